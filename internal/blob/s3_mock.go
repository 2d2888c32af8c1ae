package blob

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// mockS3RoundTripper serves just enough of the S3 REST API (path-style GET,
// HEAD, PUT and DELETE on objects) for the S3 store to run without a network.
type mockS3RoundTripper struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newMockS3RoundTripper() *mockS3RoundTripper {
	return &mockS3RoundTripper{objects: make(map[string][]byte)}
}

func (m *mockS3RoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	bucket, key := splitBucketKey(req.URL.Path)
	if bucket == "" || key == "" {
		return response(req, http.StatusBadRequest, nil), nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	switch req.Method {
	case http.MethodGet:
		data, ok := m.objects[key]
		if !ok {
			return response(req, http.StatusNotFound, []byte(noSuchKeyBody)), nil
		}
		resp := response(req, http.StatusOK, append([]byte(nil), data...))
		resp.Header.Set("Content-Type", "application/json")
		return resp, nil
	case http.MethodHead:
		data, ok := m.objects[key]
		if !ok {
			return response(req, http.StatusNotFound, nil), nil
		}
		resp := response(req, http.StatusOK, nil)
		resp.Header.Set("Content-Length", strconv.Itoa(len(data)))
		return resp, nil
	case http.MethodPut:
		body, err := io.ReadAll(req.Body)
		if err != nil {
			return nil, err
		}
		if strings.Contains(req.Header.Get("Content-Encoding"), "aws-chunked") || req.Header.Get("X-Amz-Decoded-Content-Length") != "" {
			decoded, err := decodeAWSChunked(body)
			if err != nil {
				return response(req, http.StatusBadRequest, nil), nil
			}
			body = decoded
		}
		m.objects[key] = body
		resp := response(req, http.StatusOK, nil)
		resp.Header.Set("ETag", fmt.Sprintf("\"%x\"", len(body)))
		return resp, nil
	case http.MethodDelete:
		delete(m.objects, key)
		return response(req, http.StatusNoContent, nil), nil
	default:
		return response(req, http.StatusMethodNotAllowed, nil), nil
	}
}

const noSuchKeyBody = `<?xml version="1.0" encoding="UTF-8"?><Error><Code>NoSuchKey</Code><Message>The specified key does not exist.</Message></Error>`

func splitBucketKey(path string) (string, string) {
	trimmed := strings.TrimPrefix(path, "/")
	bucket, key, _ := strings.Cut(trimmed, "/")
	return bucket, key
}

func response(req *http.Request, status int, body []byte) *http.Response {
	return &http.Response{
		StatusCode:    status,
		Header:        make(http.Header),
		Body:          io.NopCloser(bytes.NewReader(body)),
		ContentLength: int64(len(body)),
		Request:       req,
	}
}

// decodeAWSChunked strips aws-chunked framing: "<hex-size>[;ext]\r\n<data>\r\n"
// repeated until a zero-size chunk, optionally followed by trailers.
func decodeAWSChunked(body []byte) ([]byte, error) {
	reader := bufio.NewReader(bytes.NewReader(body))
	var out bytes.Buffer
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			return nil, fmt.Errorf("read chunk header: %w", err)
		}
		sizeField, _, _ := strings.Cut(strings.TrimSpace(line), ";")
		size, err := strconv.ParseInt(sizeField, 16, 64)
		if err != nil {
			return nil, fmt.Errorf("parse chunk size %q: %w", sizeField, err)
		}
		if size == 0 {
			return out.Bytes(), nil
		}
		if _, err := io.CopyN(&out, reader, size); err != nil {
			return nil, fmt.Errorf("read chunk: %w", err)
		}
		if _, err := reader.ReadString('\n'); err != nil {
			return nil, fmt.Errorf("read chunk terminator: %w", err)
		}
	}
}

// NewMockS3 returns an S3 store whose client talks to an in-process fake.
func NewMockS3(bucket string) (*S3, error) {
	rt := newMockS3RoundTripper()
	cfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion("us-east-1"),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("mock", "mock", "")),
	)
	if err != nil {
		return nil, err
	}
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.HTTPClient = &http.Client{Transport: rt}
		o.UsePathStyle = true
		o.BaseEndpoint = aws.String("https://mock.s3.local")
	})
	return NewS3WithClient(client, bucket), nil
}
