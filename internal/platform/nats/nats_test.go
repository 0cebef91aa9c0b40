package nats

import (
	"net"
	"strings"
	"testing"

	"pattern_scanner/internal/feature/signals/adapters"

	"github.com/stretchr/testify/assert"
)

func TestConnect_Unreachable(t *testing.T) {
	t.Parallel()

	// 空きポートを確保してから閉じ、接続できないURLを作る
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := l.Addr().String()
	_ = l.Close()

	nc, err := Connect("nats://"+addr, "scanner-test")
	assert.Error(t, err)
	assert.Nil(t, nc)
}

// TestStreamSubjectsCoverPublisher はストリームが配信先サブジェクトを捕捉することを検証します。
func TestStreamSubjectsCoverPublisher(t *testing.T) {
	t.Parallel()

	prefix := strings.TrimSuffix(StreamSubjects, ">")
	for _, symbol := range []string{"AAPL", "brk.b", "7203.T"} {
		assert.True(t, strings.HasPrefix(adapters.Subject(symbol), prefix), symbol)
	}
	assert.Equal(t, adapters.SubjectPrefix, prefix)
}
