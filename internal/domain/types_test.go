package domain

import "testing"

// TestIsVideoMime verifies media kind detection from the MIME prefix.
func TestIsVideoMime(t *testing.T) {
	if !IsVideoMime("video/mp4") {
		t.Fatalf("video/mp4 should be video")
	}
	if IsVideoMime("audio/mpeg") {
		t.Fatalf("audio/mpeg should not be video")
	}
}

// TestDecodedSize verifies the payload size estimate used by the ceiling check.
func TestDecodedSize(t *testing.T) {
	p := EncodedPayload{Data: "QUJD"}
	if got := p.DecodedSize(); got != 3 {
		t.Fatalf("DecodedSize = %d, want 3", got)
	}
	if got := DecodedSize(""); got != 0 {
		t.Fatalf("DecodedSize(\"\") = %d, want 0", got)
	}
}
