package meta

import (
	"fmt"

	"github.com/fagongzi/goetty"
)

const (
	load      byte = 0
	drop      byte = 1
	inventory byte = 2
)

var (
	// CmdEncoder node command encoder
	CmdEncoder = goetty.NewIntLengthFieldBasedEncoder(&cmdCodec{})
	// CmdDecoder node command decoder
	CmdDecoder = goetty.NewIntLengthFieldBasedDecoder(&cmdCodec{})
)

// LoadMsg ask a serving node to load a segment
type LoadMsg struct {
	OP      uint64
	Segment Segment
}

// DropMsg ask a serving node to drop a segment
type DropMsg struct {
	OP      uint64
	Segment Segment
}

// InventoryMsg a serving node reports its resident and queued segments
type InventoryMsg struct {
	ServerID    string
	Loaded      []Segment
	QueuedLoads []Segment
	QueuedDrops []Segment
}

type cmdCodec struct {
}

func (c *cmdCodec) Decode(in *goetty.ByteBuf) (bool, interface{}, error) {
	t, _ := in.ReadByte()
	switch t {
	case load:
		return true, &LoadMsg{
			OP:      ReadUInt64(in),
			Segment: ReadSegment(in),
		}, nil
	case drop:
		return true, &DropMsg{
			OP:      ReadUInt64(in),
			Segment: ReadSegment(in),
		}, nil
	case inventory:
		msg := &InventoryMsg{}
		msg.ServerID = ReadString(in)
		msg.Loaded = ReadSegments(in)
		msg.QueuedLoads = ReadSegments(in)
		msg.QueuedDrops = ReadSegments(in)
		return true, msg, nil
	}

	return false, nil, fmt.Errorf("%d not support", t)
}

func (c *cmdCodec) Encode(data interface{}, out *goetty.ByteBuf) error {
	if msg, ok := data.(*LoadMsg); ok {
		out.WriteByte(load)
		out.WriteUInt64(msg.OP)
		WriteSegment(msg.Segment, out)
	} else if msg, ok := data.(*DropMsg); ok {
		out.WriteByte(drop)
		out.WriteUInt64(msg.OP)
		WriteSegment(msg.Segment, out)
	} else if msg, ok := data.(*InventoryMsg); ok {
		out.WriteByte(inventory)
		WriteString(msg.ServerID, out)
		WriteSegments(msg.Loaded, out)
		WriteSegments(msg.QueuedLoads, out)
		WriteSegments(msg.QueuedDrops, out)
	} else {
		return fmt.Errorf("%T not support", data)
	}

	return nil
}
