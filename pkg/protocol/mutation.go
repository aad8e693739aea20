package protocol

import "fmt"

// Op is the type of a host mutation.
type Op uint8

const (
	OpCreate     Op = 0x01 // Create element node ID with Tag
	OpCreateText Op = 0x02 // Create text node ID
	OpSetAttr    Op = 0x03 // Set attribute Key=Value on ID ("nodeValue" on text)
	OpResetAttr  Op = 0x04 // Reset attribute Key on ID
	OpAttach     Op = 0x05 // Bind listener for event Key on ID
	OpDetach     Op = 0x06 // Unbind listener for event Key on ID
	OpAppend     Op = 0x07 // Append ID as the last child of Parent
	OpInsert     Op = 0x08 // Insert ID under Parent before Before
	OpRemove     Op = 0x09 // Remove ID from Parent
)

// String returns the string representation of the op.
func (op Op) String() string {
	switch op {
	case OpCreate:
		return "Create"
	case OpCreateText:
		return "CreateText"
	case OpSetAttr:
		return "SetAttr"
	case OpResetAttr:
		return "ResetAttr"
	case OpAttach:
		return "Attach"
	case OpDetach:
		return "Detach"
	case OpAppend:
		return "Append"
	case OpInsert:
		return "Insert"
	case OpRemove:
		return "Remove"
	default:
		return "Unknown"
	}
}

// Mutation is one host operation. Node IDs are assigned by the host; zero
// means absent.
type Mutation struct {
	Op     Op
	ID     uint64
	Parent uint64 // Append, Insert, Remove
	Before uint64 // Insert
	Tag    string // Create
	Key    string // attribute or event name
	Value  string // SetAttr
}

// String returns a compact form for logs and test failures.
func (m Mutation) String() string {
	switch m.Op {
	case OpCreate:
		return fmt.Sprintf("Create(%d <%s>)", m.ID, m.Tag)
	case OpCreateText:
		return fmt.Sprintf("CreateText(%d)", m.ID)
	case OpSetAttr:
		return fmt.Sprintf("SetAttr(%d %s=%q)", m.ID, m.Key, m.Value)
	case OpResetAttr, OpAttach, OpDetach:
		return fmt.Sprintf("%s(%d %s)", m.Op, m.ID, m.Key)
	case OpAppend, OpRemove:
		return fmt.Sprintf("%s(%d -> %d)", m.Op, m.ID, m.Parent)
	case OpInsert:
		return fmt.Sprintf("Insert(%d -> %d before %d)", m.ID, m.Parent, m.Before)
	default:
		return "Unknown"
	}
}

// MutationsFrame is the payload of a FrameMutations frame: the mutations of
// one commit, numbered by commit sequence.
type MutationsFrame struct {
	Seq       uint64
	Mutations []Mutation
}

// EncodeMutations encodes a mutations payload.
func EncodeMutations(mf *MutationsFrame) []byte {
	e := NewEncoder()
	EncodeMutationsTo(e, mf)
	return e.Bytes()
}

// EncodeMutationsTo encodes a mutations payload using the provided encoder.
func EncodeMutationsTo(e *Encoder, mf *MutationsFrame) {
	e.WriteUvarint(mf.Seq)
	e.WriteUvarint(uint64(len(mf.Mutations)))
	for _, m := range mf.Mutations {
		encodeMutation(e, m)
	}
}

func encodeMutation(e *Encoder, m Mutation) {
	e.WriteByte(byte(m.Op))
	e.WriteUvarint(m.ID)
	switch m.Op {
	case OpCreate:
		e.WriteString(m.Tag)
	case OpCreateText:
	case OpSetAttr:
		e.WriteString(m.Key)
		e.WriteString(m.Value)
	case OpResetAttr, OpAttach, OpDetach:
		e.WriteString(m.Key)
	case OpAppend, OpRemove:
		e.WriteUvarint(m.Parent)
	case OpInsert:
		e.WriteUvarint(m.Parent)
		e.WriteUvarint(m.Before)
	}
}

// DecodeMutations decodes a mutations payload.
func DecodeMutations(data []byte) (*MutationsFrame, error) {
	d := NewDecoder(data)
	return DecodeMutationsFrom(d)
}

// DecodeMutationsFrom decodes a mutations payload from a decoder.
func DecodeMutationsFrom(d *Decoder) (*MutationsFrame, error) {
	seq, err := d.ReadUvarint()
	if err != nil {
		return nil, err
	}
	count, err := d.ReadCollectionCount()
	if err != nil {
		return nil, err
	}

	mf := &MutationsFrame{Seq: seq, Mutations: make([]Mutation, count)}
	for i := range mf.Mutations {
		m, err := decodeMutation(d)
		if err != nil {
			return nil, err
		}
		mf.Mutations[i] = m
	}
	return mf, nil
}

func decodeMutation(d *Decoder) (Mutation, error) {
	var m Mutation
	op, err := d.ReadByte()
	if err != nil {
		return m, err
	}
	m.Op = Op(op)
	if m.ID, err = d.ReadUvarint(); err != nil {
		return m, err
	}

	switch m.Op {
	case OpCreate:
		m.Tag, err = d.ReadString()
	case OpCreateText:
	case OpSetAttr:
		if m.Key, err = d.ReadString(); err != nil {
			return m, err
		}
		m.Value, err = d.ReadString()
	case OpResetAttr, OpAttach, OpDetach:
		m.Key, err = d.ReadString()
	case OpAppend, OpRemove:
		m.Parent, err = d.ReadUvarint()
	case OpInsert:
		if m.Parent, err = d.ReadUvarint(); err != nil {
			return m, err
		}
		m.Before, err = d.ReadUvarint()
	default:
		return m, fmt.Errorf("protocol: unknown mutation op 0x%02x", op)
	}
	return m, err
}
