package protocol

// SnapshotMessage is the payload of a FrameSnapshot frame: the serialized
// host tree as of commit Seq. Mutation frames with a higher Seq apply on top.
type SnapshotMessage struct {
	Seq  uint64
	HTML string
}

// EncodeSnapshot encodes a SnapshotMessage to bytes.
func EncodeSnapshot(sm *SnapshotMessage) []byte {
	e := NewEncoder()
	e.WriteUvarint(sm.Seq)
	e.WriteString(sm.HTML)
	return e.Bytes()
}

// DecodeSnapshot decodes a SnapshotMessage from bytes.
func DecodeSnapshot(data []byte) (*SnapshotMessage, error) {
	d := NewDecoder(data)
	seq, err := d.ReadUvarint()
	if err != nil {
		return nil, err
	}
	html, err := d.ReadString()
	if err != nil {
		return nil, err
	}
	return &SnapshotMessage{Seq: seq, HTML: html}, nil
}
