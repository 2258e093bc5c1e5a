package ingest

import "testing"

func TestIsLZ4Framed(t *testing.T) {
	if !isLZ4Framed([]byte{0x04, 0x22, 0x4d, 0x18, 0x00}) {
		t.Fatal("expected lz4 magic to be detected")
	}
	if isLZ4Framed([]byte(`{"ts_ms":1}`)) {
		t.Fatal("did not expect plain JSON to be detected as lz4")
	}
	if isLZ4Framed([]byte{0x01}) {
		t.Fatal("did not expect a too-short buffer to be detected as lz4")
	}
}

func TestS3SourceKey(t *testing.T) {
	s := &S3Source{bucket: "b", prefix: ""}
	if got := s.key("BTC", "20240101", 5); got != "BTC/20240101-05.jsonl" {
		t.Fatalf("unexpected key: %q", got)
	}

	s.prefix = "archive"
	if got := s.key("BTC", "20240101", 5); got != "archive/BTC/20240101-05.jsonl" {
		t.Fatalf("unexpected prefixed key: %q", got)
	}
}

func TestNormalizeEndpoint(t *testing.T) {
	if got := normalizeEndpoint("minio.local:9000", false); got != "http://minio.local:9000" {
		t.Fatalf("unexpected endpoint: %q", got)
	}
	if got := normalizeEndpoint("minio.local:9000", true); got != "https://minio.local:9000" {
		t.Fatalf("unexpected endpoint: %q", got)
	}
	if got := normalizeEndpoint("https://s3.example.com", false); got != "https://s3.example.com" {
		t.Fatalf("unexpected endpoint: %q", got)
	}
}
