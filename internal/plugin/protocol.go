// Package plugin implements the out-of-process preview plugin host: a
// framed MessagePack RPC spoken over a child process's stdin/stdout.
package plugin

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"
)

// ProtocolVersion is the host's semver, compared major-version-only
// against a plugin's declared version during handshake.
const ProtocolVersion = "1.2.0"

// CallID is a UUIDv4 call identifier, written on the wire as 16 raw
// bytes rather than its hyphenated string form.
type CallID uuid.UUID

// NewCallID generates a fresh call identifier.
func NewCallID() CallID { return CallID(uuid.New()) }

func (c CallID) String() string { return uuid.UUID(c).String() }

var _ msgpack.CustomEncoder = CallID{}
var _ msgpack.CustomDecoder = (*CallID)(nil)

// EncodeMsgpack writes the call id as a 16-byte binary string, not its
// text representation.
func (c CallID) EncodeMsgpack(enc *msgpack.Encoder) error {
	return enc.EncodeBytes(c[:])
}

// DecodeMsgpack reads a 16-byte binary string back into a CallID.
func (c *CallID) DecodeMsgpack(dec *msgpack.Decoder) error {
	b, err := dec.DecodeBytes()
	if err != nil {
		return err
	}
	if len(b) != 16 {
		return fmt.Errorf("plugin: call id must be 16 bytes, got %d", len(b))
	}
	copy(c[:], b)
	return nil
}

// Every message on the wire is a MessagePack map carrying an internally
// tagged variant under the "_T" key.
const tagKey = "_T"

// Engine->plugin command tags.
const (
	tagHello        = "Hello"
	tagPreview      = "Preview"
	tagPreviewPopup = "PreviewPopup"
)

// Plugin->engine response tags.
const (
	tagHelloResponse   = "Hello"
	tagIncompatible    = "VersionIncompatible"
	tagPreviewResponse = "Preview"
	tagError           = "Error"
)

// HelloCommand is the host's handshake greeting.
type HelloCommand struct {
	ProtocolVersion string `msgpack:"protocol_version"`
}

// PreviewCommand asks a plugin to preview path for the right-hand panel.
type PreviewCommand struct {
	Path string `msgpack:"path"`
}

// PreviewPopupCommand asks a plugin to preview path for the larger popup
// view; AvailableWidth is advisory and may be ignored.
type PreviewPopupCommand struct {
	Path           string `msgpack:"path"`
	AvailableWidth int    `msgpack:"available_width,omitempty"`
}

// PluginMetadata is the capability descriptor a plugin returns on a
// compatible handshake.
type PluginMetadata struct {
	Name            string `msgpack:"name"`
	Version         string `msgpack:"version"`
	FilePattern     string `msgpack:"file_pattern"`
	ProtocolVersion string `msgpack:"protocol_version"`
}

// WireComponent is the wire shape of one piece of plugin-rendered
// preview output. Its variant is named by the "kind" field, not by the
// "_T" key that tags top-level messages.
type WireComponent struct {
	Kind    string   `msgpack:"kind"`
	Text    string   `msgpack:"text,omitempty"`
	Image   string   `msgpack:"image_path,omitempty"`
	Bytes   []byte   `msgpack:"image_bytes,omitempty"`
	Format  string   `msgpack:"image_format,omitempty"`
	UID     string   `msgpack:"image_uid,omitempty"`
	Headers []string `msgpack:"headers,omitempty"`
	Rows    [][]string `msgpack:"rows,omitempty"`
}

// encodeFrame writes a u32 big-endian length prefix followed by the
// MessagePack encoding of payload, which must already carry its "_T" tag
// field (callers build a map[string]interface{} with _T set).
func encodeFrame(w io.Writer, payload interface{}) error {
	body, err := msgpack.Marshal(payload)
	if err != nil {
		return fmt.Errorf("plugin: encode frame: %w", err)
	}
	if len(body) > 0xFFFFFFFF {
		return fmt.Errorf("plugin: frame too large: %d bytes", len(body))
	}
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(body)))
	if _, err := w.Write(lenBuf[:]); err != nil {
		return fmt.Errorf("plugin: write frame length: %w", err)
	}
	if _, err := w.Write(body); err != nil {
		return fmt.Errorf("plugin: write frame body: %w", err)
	}
	return nil
}

// decodeFrame reads one u32-big-endian-length-prefixed MessagePack frame
// and returns its raw body for further decoding.
func decodeFrame(r io.Reader) ([]byte, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return nil, err
	}
	n := binary.BigEndian.Uint32(lenBuf[:])
	body := make([]byte, n)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, fmt.Errorf("plugin: read frame body: %w", err)
	}
	return body, nil
}

func helloFrame() map[string]interface{} {
	return map[string]interface{}{tagKey: tagHello, "protocol_version": ProtocolVersion}
}

func previewFrame(path string) map[string]interface{} {
	return map[string]interface{}{tagKey: tagPreview, "path": path}
}

func previewPopupFrame(path string, availableWidth int) map[string]interface{} {
	m := map[string]interface{}{tagKey: tagPreviewPopup, "path": path}
	if availableWidth > 0 {
		m["available_width"] = availableWidth
	}
	return m
}

// response is the decoded plugin->engine reply, normalized out of the
// internally-tagged wire map.
type response struct {
	tag        string
	metadata   PluginMetadata
	protoVer   string
	components []WireComponent
	errMessage string
}

func decodeResponse(body []byte) (response, error) {
	var raw map[string]interface{}
	if err := msgpack.Unmarshal(body, &raw); err != nil {
		return response{}, fmt.Errorf("plugin: decode response: %w", err)
	}
	tag, _ := raw[tagKey].(string)

	resp := response{tag: tag}
	switch tag {
	case tagHelloResponse:
		if err := msgpack.Unmarshal(body, &resp.metadata); err != nil {
			return response{}, fmt.Errorf("plugin: decode hello metadata: %w", err)
		}
	case tagIncompatible:
		var payload struct {
			ProtocolVersion string         `msgpack:"protocol_version"`
			Metadata        PluginMetadata `msgpack:"metadata"`
		}
		if err := msgpack.Unmarshal(body, &payload); err != nil {
			return response{}, fmt.Errorf("plugin: decode incompatible: %w", err)
		}
		resp.protoVer = payload.ProtocolVersion
		resp.metadata = payload.Metadata
	case tagPreviewResponse:
		var payload struct {
			Components []WireComponent `msgpack:"components"`
		}
		if err := msgpack.Unmarshal(body, &payload); err != nil {
			return response{}, fmt.Errorf("plugin: decode preview response: %w", err)
		}
		resp.components = payload.Components
	case tagError:
		var payload struct {
			Message string `msgpack:"message"`
		}
		if err := msgpack.Unmarshal(body, &payload); err != nil {
			return response{}, fmt.Errorf("plugin: decode error response: %w", err)
		}
		resp.errMessage = payload.Message
	default:
		return response{}, fmt.Errorf("plugin: unknown response tag %q", tag)
	}
	return resp, nil
}

// majorVersion returns the leading dot-separated component of a semver
// string, e.g. "1.2.0" -> "1".
func majorVersion(v string) string {
	for i, c := range v {
		if c == '.' {
			return v[:i]
		}
	}
	return v
}
