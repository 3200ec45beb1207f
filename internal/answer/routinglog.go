package answer

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/clearpath/assistant/internal/evaluate"
	"github.com/clearpath/assistant/internal/router"
)

// RoutingRecord is one line of the routing decision log. Every query
// produces exactly one record regardless of outcome.
type RoutingRecord struct {
	Timestamp       time.Time       `json:"timestamp"`
	Query           string          `json:"query"`
	Tier            router.Tier     `json:"tier"`
	RuleID          router.RuleID   `json:"rule_id"`
	Signals         router.Signals  `json:"signals"`
	Model           string          `json:"model"`
	InputTokens     int             `json:"input_tokens"`
	OutputTokens    int             `json:"output_tokens"`
	LatencyMs       int64           `json:"latency_ms"`
	ChunksRetrieved int             `json:"chunks_retrieved"`
	Flags           []evaluate.Flag `json:"evaluator_flags"`
}

// RoutingLog appends routing decisions to a JSONL file, one JSON object
// per line. Writes are serialized so concurrent queries never interleave
// partial lines.
type RoutingLog struct {
	mu   sync.Mutex
	file *os.File
}

func OpenRoutingLog(path string) (*RoutingLog, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open routing log: %w", err)
	}
	return &RoutingLog{file: f}, nil
}

func (l *RoutingLog) Write(rec RoutingRecord) error {
	if rec.Flags == nil {
		rec.Flags = []evaluate.Flag{}
	}
	line, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal routing record: %w", err)
	}
	line = append(line, '\n')

	l.mu.Lock()
	defer l.mu.Unlock()
	if _, err := l.file.Write(line); err != nil {
		return fmt.Errorf("write routing record: %w", err)
	}
	return nil
}

func (l *RoutingLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.file.Close()
}
