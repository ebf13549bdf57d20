package plugin

import (
	"bytes"
	"testing"

	"github.com/vmihailenco/msgpack/v5"
)

func TestEncodeDecodeFrame_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	payload := previewFrame("/tmp/a.txt")
	if err := encodeFrame(&buf, payload); err != nil {
		t.Fatalf("encodeFrame: %v", err)
	}

	body, err := decodeFrame(&buf)
	if err != nil {
		t.Fatalf("decodeFrame: %v", err)
	}

	var raw map[string]interface{}
	if err := msgpack.Unmarshal(body, &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if raw[tagKey] != tagPreview || raw["path"] != "/tmp/a.txt" {
		t.Errorf("decoded frame = %+v", raw)
	}
}

func TestDecodeFrame_TruncatedBody(t *testing.T) {
	var buf bytes.Buffer
	buf.Write([]byte{0, 0, 0, 10}) // claims 10 bytes, writes none
	if _, err := decodeFrame(&buf); err == nil {
		t.Error("expected an error decoding a frame shorter than its declared length")
	}
}

func TestCallID_EncodeDecodeRoundTrip(t *testing.T) {
	id := NewCallID()
	body, err := msgpack.Marshal(id)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var got CallID
	if err := msgpack.Unmarshal(body, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got != id {
		t.Errorf("round-tripped call id = %v, want %v", got, id)
	}
}

func TestCallID_DecodeWrongLength(t *testing.T) {
	body, err := msgpack.Marshal([]byte{1, 2, 3})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var id CallID
	if err := msgpack.Unmarshal(body, &id); err == nil {
		t.Error("expected an error decoding a call id from fewer than 16 bytes")
	}
}

func TestDecodeResponse_Hello(t *testing.T) {
	meta := PluginMetadata{Name: "img-preview", Version: "1.0.0", FilePattern: "*.png", ProtocolVersion: "1.2.0"}
	body, err := msgpack.Marshal(struct {
		Tag string `msgpack:"_T"`
		PluginMetadata
	}{Tag: tagHelloResponse, PluginMetadata: meta})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	resp, err := decodeResponse(body)
	if err != nil {
		t.Fatalf("decodeResponse: %v", err)
	}
	if resp.tag != tagHelloResponse || resp.metadata.Name != "img-preview" {
		t.Errorf("decoded response = %+v", resp)
	}
}

func TestDecodeResponse_UnknownTag(t *testing.T) {
	body, err := msgpack.Marshal(map[string]interface{}{tagKey: "NotARealTag"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if _, err := decodeResponse(body); err == nil {
		t.Error("expected an error decoding an unknown response tag")
	}
}

func TestMajorVersion(t *testing.T) {
	cases := map[string]string{
		"1.2.0": "1",
		"2.0.0": "2",
		"3":     "3",
	}
	for in, want := range cases {
		if got := majorVersion(in); got != want {
			t.Errorf("majorVersion(%q) = %q, want %q", in, got, want)
		}
	}
}
