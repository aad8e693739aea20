package stream

// clientScript keeps the page in sync with the server. It decodes snapshot
// frames, refetches the fragment after each mutation frame and posts events
// of elements marked with data-vf-on.
const clientScript = `(function () {
  var root = document.getElementById("vf-root");
  var events = ["click", "input", "change", "submit", "keydown"];

  function uvarint(buf, pos) {
    var v = 0, shift = 0, b;
    do {
      b = buf[pos.i++];
      v += (b & 0x7f) * Math.pow(2, shift);
      shift += 7;
    } while (b & 0x80);
    return v;
  }

  function refresh() {
    fetch("/fragment").then(function (r) { return r.text(); }).then(function (html) {
      root.innerHTML = html;
    });
  }

  var pending = [];
  function onFrame(data) {
    var buf = new Uint8Array(data);
    var type = buf[0], flags = buf[1];
    pending.push(buf.subarray(4));
    if (flags & 0x01) return;
    var size = pending.reduce(function (n, p) { return n + p.length; }, 0);
    var payload = new Uint8Array(size), off = 0;
    pending.forEach(function (p) { payload.set(p, off); off += p.length; });
    pending = [];

    if (type === 0x02) {
      var pos = { i: 0 };
      uvarint(payload, pos);
      var n = uvarint(payload, pos);
      root.innerHTML = new TextDecoder().decode(payload.subarray(pos.i, pos.i + n));
    } else if (type === 0x01) {
      refresh();
    }
  }

  function connect() {
    var proto = location.protocol === "https:" ? "wss://" : "ws://";
    var ws = new WebSocket(proto + location.host + "/ws");
    ws.binaryType = "arraybuffer";
    ws.onmessage = function (e) { onFrame(e.data); };
    ws.onclose = function () { setTimeout(connect, 1000); };
  }

  events.forEach(function (name) {
    document.addEventListener(name, function (e) {
      var el = e.target.closest("[data-vf-on]");
      if (!el || el.getAttribute("data-vf-on").split(" ").indexOf(name) < 0) return;
      if (name === "submit") e.preventDefault();
      var body = new URLSearchParams();
      if (e.target.value !== undefined) body.set("value", e.target.value);
      if (e.key) body.set("key", e.key);
      fetch("/events/" + el.getAttribute("data-vf-id") + "/" + name, { method: "POST", body: body });
    });
  });

  connect();
})();`
