package protocol

import (
	"fmt"
	"strings"
	"time"
)

// Control tags are ordinary body bytes consumed by convention. They can
// never collide with chat text because well-formed clients always prefix
// chat lines with "<nickname> [hh:mm] : ", and none of the tag bytes can
// start such a prefix.
const (
	tagName   = '~'
	tagSwitch = '\\'
	tagRename = '!'
	tagDelete = '*'
)

// Replies sent by the server.
const (
	ReplyNameAccepted   = "~Name"
	ReplyNameTaken      = "~!Name"
	ReplyRoomMissing    = `\\`
	ReplyDeleteRejected = "*!"
	ReplyDeleteAccepted = "**"
)

// ListRequest asks the server for the room listing; ListingPrefix
// introduces the reply payload.
const (
	ListRequest   = "LOR"
	ListingPrefix = "[]LOR:"
)

// NumRooms is the number of fixed room slots. Switch and delete requests
// carry a single digit, so indices run 0 through NumRooms-1.
const NumRooms = 10

// RequestKind classifies a body received by the server.
type RequestKind int

const (
	RequestChat RequestKind = iota
	RequestName
	RequestSwitch
	RequestRename
	RequestDelete
	RequestList
)

// ClassifyRequest inspects the leading bytes of a client body.
func ClassifyRequest(body []byte) RequestKind {
	if len(body) == 0 {
		return RequestChat
	}
	switch body[0] {
	case tagName:
		return RequestName
	case tagSwitch:
		return RequestSwitch
	case tagRename:
		return RequestRename
	case tagDelete:
		return RequestDelete
	}
	if string(body) == ListRequest {
		return RequestList
	}
	return RequestChat
}

// ReplyKind classifies a body received by the client.
type ReplyKind int

const (
	ReplyChat ReplyKind = iota
	ReplyName
	ReplyRoom
	ReplyDelete
	ReplyListing
)

// ClassifyReply inspects the leading bytes of a server body.
func ClassifyReply(body []byte) ReplyKind {
	if len(body) == 0 {
		return ReplyChat
	}
	switch body[0] {
	case tagName:
		return ReplyName
	case tagSwitch:
		return ReplyRoom
	case tagDelete:
		return ReplyDelete
	}
	if strings.HasPrefix(string(body), ListingPrefix) {
		return ReplyListing
	}
	return ReplyChat
}

// Request constructors used by the client.

// NameRequest re-registers a nickname after a collision.
func NameRequest(name string) []byte { return []byte(string(tagName) + name) }

// SwitchRequest asks to move to room index.
func SwitchRequest(index int) []byte { return []byte(fmt.Sprintf("%c%d", tagSwitch, index)) }

// RenameRequest names the sender's current room.
func RenameRequest(name string) []byte { return []byte(string(tagRename) + name) }

// DeleteRequest asks to delete room index.
func DeleteRequest(index int) []byte { return []byte(fmt.Sprintf("%c%d", tagDelete, index)) }

// RoomNamedReply tells a client the room it switched to exists and what it
// is called.
func RoomNamedReply(name string) []byte { return []byte(string(tagSwitch) + name) }

// RoomIndex extracts and bounds-checks the digit following a switch or
// delete tag. Anything outside 0-9 is rejected as malformed rather than
// used as an array index.
func RoomIndex(body []byte) (int, error) {
	if len(body) != 2 || body[1] < '0' || body[1] > '9' {
		return 0, ErrMalformedHeader
	}
	return int(body[1] - '0'), nil
}

// FormatChatLine renders the canonical chat-line form. The prefix doubles
// as the sender identity used for ban filtering, and its leading nickname
// byte is what keeps chat lines disjoint from control tags.
func FormatChatLine(nickname, text string, at time.Time) string {
	return fmt.Sprintf("%s [%02d:%02d] : %s", nickname, at.Hour(), at.Minute(), text)
}

// ChatSender returns the nickname prefix of a chat line: everything before
// the first " [". Lines without the delimiter return the empty string.
func ChatSender(line string) string {
	if i := strings.Index(line, " ["); i >= 0 {
		return line[:i]
	}
	return ""
}

// ReplyText returns the portion of a chat line after the first ": ", the
// key used by the reply-frequency log.
func ReplyText(line string) (string, bool) {
	i := strings.Index(line, ": ")
	if i < 0 {
		return "", false
	}
	return line[i+2:], true
}

// ListingPayload strips the listing prefix from a room-listing reply.
func ListingPayload(body []byte) string {
	return strings.TrimPrefix(string(body), ListingPrefix)
}
