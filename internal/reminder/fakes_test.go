package reminder

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"recruitbot/internal/domain"
	"recruitbot/internal/domain/entities"
	"recruitbot/internal/ports/output"
)

// stubT renders "key" or "key|mentions" so tests can assert on routing
// without depending on locale files.
type stubT struct{}

func (stubT) T(_, key string, data map[string]any) string {
	if m, ok := data["Mentions"]; ok {
		return key + "|" + fmt.Sprint(m)
	}
	if c, ok := data["Code"]; ok {
		return key + "|" + fmt.Sprint(c)
	}
	return key
}

type sent struct {
	target     string
	content    string
	attachment *output.Attachment
}

type recordingMessenger struct {
	mu      sync.Mutex
	channel []sent
	direct  []sent
	refuse  map[string]bool
}

func newRecordingMessenger(refused ...string) *recordingMessenger {
	m := &recordingMessenger{refuse: make(map[string]bool)}
	for _, u := range refused {
		m.refuse[u] = true
	}
	return m
}

func (m *recordingMessenger) SendChannelMessage(_ context.Context, channelID, content string, _ ...output.Attachment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.channel = append(m.channel, sent{target: channelID, content: content})
	return nil
}

func (m *recordingMessenger) SendDirectMessage(_ context.Context, userID, content string, att *output.Attachment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.direct = append(m.direct, sent{target: userID, content: content, attachment: att})
	if m.refuse[userID] {
		return fmt.Errorf("dm %s: %w", userID, domain.ErrDeliveryRefused)
	}
	return nil
}

func (m *recordingMessenger) channelMessages() []sent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]sent(nil), m.channel...)
}

func (m *recordingMessenger) directMessages() []sent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]sent(nil), m.direct...)
}

func countPrefix(msgs []sent, prefix string) int {
	n := 0
	for _, s := range msgs {
		if strings.HasPrefix(s.content, prefix) {
			n++
		}
	}
	return n
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met before timeout")
		}
		time.Sleep(2 * time.Millisecond)
	}
}

// cycleCodes returns a generator that hands out codes in order, wrapping
// around at the end.
func cycleCodes(codes ...string) func(int) (string, error) {
	var mu sync.Mutex
	i := 0
	return func(int) (string, error) {
		mu.Lock()
		defer mu.Unlock()
		c := codes[i%len(codes)]
		i++
		return c, nil
	}
}

func fakePNG(string) ([]byte, error) { return []byte("png"), nil }

func brutalEvent(id string, users ...string) *entities.Event {
	return &entities.Event{
		ID:           id,
		ChannelID:    "chan-" + id,
		GuildID:      "g1",
		OwnerID:      "owner",
		Title:        "Cleanup " + id,
		DateString:   "10/25 13:00",
		Location:     "Hall",
		RequiredNum:  len(users),
		Tier:         entities.TierBrutal,
		Participants: users,
	}
}
