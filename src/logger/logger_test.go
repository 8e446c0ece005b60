// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package logger_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/H0llyW00dzZ/hkd-chain-verifier/src/logger"
)

// entries decodes every JSON line written to buf.
func entries(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()

	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry), "invalid JSON line: %s", line)
		out = append(out, entry)
	}
	return out
}

func TestCLILogger(t *testing.T) {
	tests := []struct {
		name   string
		log    func(l logger.Logger)
		expect string
	}{
		{name: "Printf", log: func(l logger.Logger) { l.Printf("loaded %d CRL(s)", 2) }, expect: "loaded 2 CRL(s)"},
		{name: "Println", log: func(l logger.Logger) { l.Println("host.crt:", "verified") }, expect: "host.crt: verified"},
		{name: "Errorf", log: func(l logger.Logger) { l.Errorf("%s: revoked", "host_rev.crt") }, expect: "error: host_rev.crt: revoked"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			log := logger.NewCLILogger()
			log.SetOutput(&buf)

			tt.log(log)
			assert.Contains(t, buf.String(), tt.expect)
		})
	}
}

func TestCLILogger_SetOutput(t *testing.T) {
	var first, second bytes.Buffer
	log := logger.NewCLILogger()

	log.SetOutput(&first)
	log.Println("first")
	log.SetOutput(&second)
	log.Println("second")

	assert.Contains(t, first.String(), "first")
	assert.NotContains(t, first.String(), "second")
	assert.Contains(t, second.String(), "second")
}

func TestJSONLogger(t *testing.T) {
	tests := []struct {
		name        string
		log         func(l logger.Logger)
		expectLevel string
		expectMsg   string
	}{
		{name: "Printf", log: func(l logger.Logger) { l.Printf("trust store ready: %d anchor(s)", 1) }, expectLevel: "info", expectMsg: "trust store ready: 1 anchor(s)"},
		{name: "Println", log: func(l logger.Logger) { l.Println("verified") }, expectLevel: "info", expectMsg: "verified"},
		{name: "Errorf", log: func(l logger.Logger) { l.Errorf("setup failed (%s)", "io_error") }, expectLevel: "error", expectMsg: "setup failed (io_error)"},
		{name: "Escaping", log: func(l logger.Logger) { l.Printf("subject %q\n\ttab", "CN=Test \"Root\"") }, expectLevel: "info", expectMsg: "subject \"CN=Test \\\"Root\\\"\"\n\ttab"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.log(logger.NewJSONLogger(&buf, false))

			got := entries(t, &buf)
			require.Len(t, got, 1)
			assert.Equal(t, tt.expectLevel, got[0]["level"])
			assert.Equal(t, tt.expectMsg, got[0]["message"])
		})
	}
}

func TestJSONLogger_SilentAndDiscard(t *testing.T) {
	var buf bytes.Buffer
	silent := logger.NewJSONLogger(&buf, true)
	silent.Printf("hidden")
	silent.Errorf("hidden")
	assert.Empty(t, buf.String())

	assert.NotPanics(t, func() {
		logger.NewJSONLogger(nil, false).Println("discarded")
	})

	log := logger.NewJSONLogger(&buf, false)
	log.SetOutput(nil)
	log.Println("discarded")
	assert.Empty(t, buf.String())
}

func TestJSONLogger_With(t *testing.T) {
	var buf bytes.Buffer
	base := logger.NewJSONLogger(&buf, false)
	app := base.With("app", "hkd-verify")
	doc := app.With("document", "host.crt")

	base.Println("base")
	app.Println("app")
	doc.Errorf("revoked")

	got := entries(t, &buf)
	require.Len(t, got, 3)

	assert.NotContains(t, got[0], "app")
	assert.Equal(t, "hkd-verify", got[1]["app"])
	assert.NotContains(t, got[1], "document")
	assert.Equal(t, "hkd-verify", got[2]["app"])
	assert.Equal(t, "host.crt", got[2]["document"])
	assert.Equal(t, "error", got[2]["level"])
}

func TestJSONLogger_Concurrent(t *testing.T) {
	var (
		buf syncBuffer
		wg  sync.WaitGroup
	)
	base := logger.NewJSONLogger(&buf, false)

	const goroutines, perGoroutine = 16, 50
	for i := range goroutines {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			log := base.With("worker", id)
			for j := range perGoroutine {
				if j%2 == 0 {
					log.Printf("document %d", j)
				} else {
					log.Errorf("document %d failed", j)
				}
			}
		}(i)
	}
	wg.Wait()

	got := entries(t, &buf.Buffer)
	assert.Len(t, got, goroutines*perGoroutine, "every line must be a complete JSON entry")
}

func TestJSONLogger_WriteToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "verify.log")
	file, err := os.Create(path)
	require.NoError(t, err)

	log := logger.NewJSONLogger(file, false)
	log.Printf("first")
	log.Errorf("second")
	require.NoError(t, file.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	got := entries(t, bytes.NewBuffer(data))
	require.Len(t, got, 2)
	assert.Equal(t, "first", got[0]["message"])
	assert.Equal(t, "error", got[1]["level"])
}

// syncBuffer is a bytes.Buffer whose writes are serialized independently of
// the logger, so the race detector checks the logger's own locking.
type syncBuffer struct {
	mu sync.Mutex
	bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.Buffer.Write(p)
}
