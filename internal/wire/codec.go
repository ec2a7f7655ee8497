// Package wire implements the pipe-delimited text framing shared by seeds
// and peers. Every frame is the entire payload of one short-lived TCP
// connection, read in a single MaxFrameBytes-sized read by the receiver.
package wire

import (
	"fmt"
	"strings"
)

// Frame tags. Anything else in the first field of a three-field frame is
// gossip; anything else entirely is malformed.
const (
	TagJoinRequest       = "JOIN_REQUEST"
	TagGetConnectedNodes = "GET_CONNECTED_NODES_REQUEST"
	TagDeadNode          = "DEAD_NODE"
	TagLivenessRequest   = "LIVENESS_REQUEST"
	TagLivenessReply     = "LIVENESS_REPLY"
)

// MaxFrameBytes bounds the single read every connection handler performs.
// A frame that doesn't fit is silently truncated; this is preserved
// behavior, not a bug, per the fixed-size-read note in the design notes.
const MaxFrameBytes = 1024

const directoryPrefix = "Connected Nodes: ["

// Split trims and pipe-splits a raw inbound buffer into its fields.
func Split(raw []byte) []string {
	fields := strings.Split(string(raw), "|")
	for i, f := range fields {
		fields[i] = strings.TrimSpace(f)
	}
	return fields
}

// JoinRequest frames a peer's registration with a seed.
func JoinRequest(peerAddr, ts string) string {
	return fmt.Sprintf("%s|%s|%s", TagJoinRequest, peerAddr, ts)
}

// ConnectedAck is the seed's informational JOIN acknowledgment. The
// double-quoted rendering of peerAddr is load-bearing: it must match the
// debug-formatted string a peer's parser is tolerant of, even though the
// peer discards the ack body entirely.
func ConnectedAck(peerAddr string) string {
	return fmt.Sprintf("Successfully Connected to %q", peerAddr)
}

// GetConnectedNodesRequest frames a directory request to a seed.
func GetConnectedNodesRequest(peerAddr, ts string) string {
	return fmt.Sprintf("%s|%s|%s", TagGetConnectedNodes, peerAddr, ts)
}

// DirectoryReply renders a seed's directory reply: double-quoted endpoints
// separated by ", ", matching the debug rendering of a string collection
// that the original implementation relied on.
func DirectoryReply(nodes []string) string {
	quoted := make([]string, len(nodes))
	for i, n := range nodes {
		quoted[i] = fmt.Sprintf("%q", n)
	}
	return fmt.Sprintf("Connected Nodes: [%s]", strings.Join(quoted, ", "))
}

// ParseDirectoryReply undoes DirectoryReply by stripping the prefix,
// trailing bracket, backslashes and quotes, then splitting on ", ". An
// empty directory parses to a single empty-string element; callers must
// treat that element as "nothing returned", not as one endpoint.
func ParseDirectoryReply(raw string) []string {
	s := strings.TrimSpace(raw)
	s = strings.ReplaceAll(s, directoryPrefix, "")
	s = strings.ReplaceAll(s, "]", "")
	s = strings.ReplaceAll(s, "\\", "")
	s = strings.ReplaceAll(s, "\"", "")
	return strings.Split(s, ", ")
}

// DeadNode frames a failure report from a peer to one of its seeds.
func DeadNode(deadAddr, ts, reporterAddr string) string {
	return fmt.Sprintf("%s|%s|%s|%s", TagDeadNode, deadAddr, ts, reporterAddr)
}

// LivenessRequest frames a probe sent peer-to-peer.
func LivenessRequest(ts, senderAddr string) string {
	return fmt.Sprintf("%s|%s|%s", TagLivenessRequest, ts, senderAddr)
}

// LivenessReply frames a probe response. origTs and senderEcho are copied
// verbatim from the request; responderAddr identifies who is replying.
func LivenessReply(origTs, senderEcho, responderAddr string) string {
	return fmt.Sprintf("%s|%s|%s|%s", TagLivenessReply, origTs, senderEcho, responderAddr)
}

// Gossip frames a 3-field flooded message: local clock, origin address and
// payload. The first field is never one of the defined request tags, which
// is how receivers tell it apart from a liveness frame.
func Gossip(ts, originAddr, payload string) string {
	return fmt.Sprintf("%s|%s|%s", ts, originAddr, payload)
}
