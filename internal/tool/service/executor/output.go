package executor

import (
	"bytes"
	"sync"

	"github.com/Cyclone1070/codeagent/internal/tool/helper/content"
)

const binaryPlaceholder = "[binary output omitted]"

// collector captures command output up to a byte cap and drops binary streams.
type collector struct {
	mu        sync.Mutex
	buf       bytes.Buffer
	maxBytes  int
	truncated bool
	binary    bool
	checked   bool
}

func newCollector(maxBytes int) *collector {
	return &collector{maxBytes: maxBytes}
}

// Write never fails so the child never sees EPIPE because of the cap.
func (c *collector) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.binary {
		return len(p), nil
	}
	if !c.checked {
		c.checked = true
		if content.IsBinary(p) {
			c.binary = true
			return len(p), nil
		}
	}

	room := c.maxBytes - c.buf.Len()
	if room <= 0 {
		c.truncated = true
		return len(p), nil
	}
	chunk := p
	if len(chunk) > room {
		chunk = chunk[:room]
		c.truncated = true
	}
	c.buf.Write(chunk)
	return len(p), nil
}

func (c *collector) String() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.binary {
		return binaryPlaceholder
	}
	return c.buf.String()
}

func (c *collector) Truncated() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.truncated
}
