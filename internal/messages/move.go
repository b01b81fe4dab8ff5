package messages

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/tecu23/chess-arena/pkg/rules"
)

var coordinateMove = regexp.MustCompile(`^([a-h][1-8])([a-h][1-8])([qrbnQRBN])?$`)

// MoveDescriptor is a move as sent by a client: either a string in
// coordinate ("e2e4", "e7e8q") or SAN ("Nf3") form, or an object carrying
// from/to/promotion and optionally san.
type MoveDescriptor struct {
	From      string `json:"from,omitempty"`
	To        string `json:"to,omitempty"`
	Promotion string `json:"promotion,omitempty"`
	SAN       string `json:"san,omitempty"`
}

// UnmarshalJSON accepts a string or an object
func (m *MoveDescriptor) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*m = MoveDescriptor{}
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*m = ParseMove(s)
		return nil
	}

	type plain MoveDescriptor
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("move: %w", err)
	}

	*m = MoveDescriptor{
		From:      strings.ToLower(strings.TrimSpace(p.From)),
		To:        strings.ToLower(strings.TrimSpace(p.To)),
		Promotion: strings.ToLower(strings.TrimSpace(p.Promotion)),
		SAN:       strings.TrimSpace(p.SAN),
	}

	return nil
}

// ParseMove splits a coordinate string into squares; anything else is SAN
func ParseMove(s string) MoveDescriptor {
	s = strings.TrimSpace(s)

	if g := coordinateMove.FindStringSubmatch(s); g != nil {
		return MoveDescriptor{From: g[1], To: g[2], Promotion: strings.ToLower(g[3])}
	}

	return MoveDescriptor{SAN: s}
}

// Empty reports whether the descriptor names no move at all
func (m MoveDescriptor) Empty() bool {
	return m.SAN == "" && (m.From == "" || m.To == "")
}

// Rules converts the descriptor for the rules engine
func (m MoveDescriptor) Rules() rules.Move {
	return rules.Move{From: m.From, To: m.To, Promotion: m.Promotion, SAN: m.SAN}
}
