package common

import (
	"encoding/json"
	"fmt"
)

type LineCol struct {
	LineNo int // The starting line number of the token
	ColNo  int // The starting column number of the token
}

func (x LineCol) String() string {
	return fmt.Sprintf("line %d, column %d", x.LineNo, x.ColNo)
}

type Span struct {
	StartLine   int // The starting line number of the token
	StartColumn int // The starting column number of the token
	EndLine     int // The ending line number of the token
	EndColumn   int // The ending column number of the token
}

func (x *LineCol) Span(lineCol LineCol) Span {
	return Span{
		StartLine:   x.LineNo,
		StartColumn: x.ColNo,
		EndLine:     lineCol.LineNo,
		EndColumn:   lineCol.ColNo,
	}
}

func (x *Span) Start() LineCol {
	return LineCol{LineNo: x.StartLine, ColNo: x.StartColumn}
}

// MarshalJSON implements custom JSON marshaling for Span.
func (s Span) MarshalJSON() ([]byte, error) {
	arr := [4]int{s.StartLine, s.StartColumn, s.EndLine, s.EndColumn}
	return json.Marshal(arr)
}

// UnmarshalJSON implements custom JSON unmarshaling for Span.
func (s *Span) UnmarshalJSON(data []byte) error {
	var arr [4]int
	if err := json.Unmarshal(data, &arr); err != nil {
		return err
	}
	s.StartLine = arr[0]
	s.StartColumn = arr[1]
	s.EndLine = arr[2]
	s.EndColumn = arr[3]
	return nil
}
