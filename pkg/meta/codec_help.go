package meta

import (
	"github.com/fagongzi/goetty"
	"github.com/fagongzi/util/hack"
)

// WriteString write string value
func WriteString(value string, buf *goetty.ByteBuf) {
	if value != "" {
		buf.WriteUInt16(uint16(len(value)))
		buf.WriteString(value)
	} else {
		buf.WriteUInt16(0)
	}
}

// ReadString read string value
func ReadString(buf *goetty.ByteBuf) string {
	size := ReadUInt16(buf)
	if size == 0 {
		return ""
	}

	_, value, _ := buf.ReadBytes(int(size))
	return hack.SliceToString(value)
}

// ReadUInt64 read uint64 value
func ReadUInt64(buf *goetty.ByteBuf) uint64 {
	value, _ := buf.ReadUInt64()
	return value
}

// ReadUInt32 read uint32 value
func ReadUInt32(buf *goetty.ByteBuf) uint32 {
	value, _ := buf.ReadUInt32()
	return value
}

// ReadUInt16 read uint16 value
func ReadUInt16(buf *goetty.ByteBuf) uint16 {
	value, _ := buf.ReadUInt16()
	return value
}

// ReadInt read int value
func ReadInt(buf *goetty.ByteBuf) int {
	value, _ := buf.ReadInt()
	return value
}

// WriteInt64 write int64 value
func WriteInt64(value int64, buf *goetty.ByteBuf) {
	buf.WriteUInt64(uint64(value))
}

// ReadInt64 read int64 value
func ReadInt64(buf *goetty.ByteBuf) int64 {
	return int64(ReadUInt64(buf))
}

// WriteSegment write segment value
func WriteSegment(value Segment, buf *goetty.ByteBuf) {
	WriteString(value.Datasource, buf)
	WriteInt64(value.Interval.Start, buf)
	WriteInt64(value.Interval.End, buf)
	WriteString(value.Version, buf)
	buf.WriteUInt32(value.Partition)
	WriteInt64(value.Size, buf)
}

// ReadSegment read segment value
func ReadSegment(buf *goetty.ByteBuf) Segment {
	value := Segment{}
	value.Datasource = ReadString(buf)
	value.Interval.Start = ReadInt64(buf)
	value.Interval.End = ReadInt64(buf)
	value.Version = ReadString(buf)
	value.Partition = ReadUInt32(buf)
	value.Size = ReadInt64(buf)
	return value
}

// WriteSegments write segment slice value
func WriteSegments(values []Segment, buf *goetty.ByteBuf) {
	buf.WriteInt(len(values))
	for _, value := range values {
		WriteSegment(value, buf)
	}
}

// ReadSegments read segment slice value
func ReadSegments(buf *goetty.ByteBuf) []Segment {
	n := ReadInt(buf)
	if n == 0 {
		return nil
	}

	values := make([]Segment, 0, n)
	for i := 0; i < n; i++ {
		values = append(values, ReadSegment(buf))
	}
	return values
}
