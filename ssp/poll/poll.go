// Package poll decodes the event stream carried in the payload of a Poll or
// PollWithAck response (spec component C7).
package poll

import (
	"fmt"

	"github.com/decapod-atm/ssp-host/ssp"
)

// Tag identifies a poll event. The tag byte space is shared with
// message.Status, but poll events are decoded independently of the message
// taxonomy, so Tag is its own type rather than an alias.
type Tag byte

const (
	TagReset                      Tag = 0xF1
	TagDisabled                   Tag = 0xE8
	TagRead                       Tag = 0xEF
	TagNoteCredit                 Tag = 0xEE
	TagRejecting                  Tag = 0xED
	TagRejected                   Tag = 0xEC
	TagStacking                   Tag = 0xCC
	TagStacked                    Tag = 0xEB
	TagStackerFull                Tag = 0xEA
	TagCashboxRemoved             Tag = 0xE3
	TagCashboxReplaced            Tag = 0xE4
	TagFraudAttempt               Tag = 0xE6
	TagNoteClearedFromFront       Tag = 0xE1
	TagNoteClearedIntoCashbox     Tag = 0xE2
	TagUnsafeJam                  Tag = 0xE7
)

// payloadLen reports how many trailing bytes follow each tag byte.
var payloadLen = map[Tag]int{
	TagDisabled:               0,
	TagRead:                   1,
	TagNoteCredit:             1,
	TagRejecting:              0,
	TagRejected:               0,
	TagStacking:               0,
	TagStacked:                0,
	TagStackerFull:            0,
	TagCashboxRemoved:         0,
	TagCashboxReplaced:        0,
	TagFraudAttempt:           1,
	TagNoteClearedFromFront:   1,
	TagNoteClearedIntoCashbox: 1,
	TagDeviceReset:            0,
	TagUnsafeJam:              0,
}

// TagDeviceReset is an alias kept for readability against spec §4.7's
// naming ("DeviceReset" event); it shares TagReset's wire value.
const TagDeviceReset = TagReset

func (t Tag) String() string {
	switch t {
	case TagReset:
		return "DeviceReset"
	case TagDisabled:
		return "Disabled"
	case TagRead:
		return "Read"
	case TagNoteCredit:
		return "NoteCredit"
	case TagRejecting:
		return "Rejecting"
	case TagRejected:
		return "Rejected"
	case TagStacking:
		return "Stacking"
	case TagStacked:
		return "Stacked"
	case TagStackerFull:
		return "StackerFull"
	case TagCashboxRemoved:
		return "CashboxRemoved"
	case TagCashboxReplaced:
		return "CashboxReplaced"
	case TagFraudAttempt:
		return "FraudAttempt"
	case TagNoteClearedFromFront:
		return "NoteClearedFromFront"
	case TagNoteClearedIntoCashbox:
		return "NoteClearedIntoCashbox"
	case TagUnsafeJam:
		return "UnsafeJam"
	default:
		return fmt.Sprintf("Tag(0x%02X)", byte(t))
	}
}

// Event is one decoded poll-stream entry: a tag plus its fixed-width,
// tag-specific trailing bytes (e.g. a channel number).
type Event struct {
	Tag  Tag
	Data []byte
}

// Channel returns Data[0] for events that carry a single channel byte, and
// ok=false for events with no payload.
func (e Event) Channel() (channel byte, ok bool) {
	if len(e.Data) == 0 {
		return 0, false
	}
	return e.Data[0], true
}

// Decode parses the payload of a Poll/PollWithAck response (after the
// leading status byte) into an ordered list of events. It consumes bytes
// until the payload is exhausted; an unrecognised tag stops decoding
// immediately and returns ssp.ErrInvalidMessage, rather than guessing a
// length (spec §4.7 / §9: "the poll decoder is a finite lazy sequence").
func Decode(payload []byte) ([]Event, error) {
	events := make([]Event, 0, len(payload))

	i := 0
	for i < len(payload) {
		tag := Tag(payload[i])

		n, known := payloadLen[tag]
		if !known {
			return events, ssp.ErrInvalidMessage(byte(tag))
		}

		if i+1+n > len(payload) {
			return events, ssp.ErrInvalidDataLength(len(payload)-i-1, n)
		}

		events = append(events, Event{
			Tag:  tag,
			Data: payload[i+1 : i+1+n],
		})

		i += 1 + n
	}

	return events, nil
}
