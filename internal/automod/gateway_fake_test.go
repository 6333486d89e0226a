package automod

import (
	"sync"
	"time"
)

type sentMessage struct {
	ChannelID   string
	Content     string
	DeleteAfter time.Duration
}

type sentReport struct {
	ChannelID string
	Report    Report
}

type purgeCall struct {
	ChannelID string
	AuthorID  string
	Since     time.Time
}

// fakeGateway records every call; behavior is steered through the public
// fields.
type fakeGateway struct {
	mu sync.Mutex

	canManage   bool
	purgeReturn int
	deleteErr   error
	purgeErr    error
	modLogs     map[string][]string
	homes       map[string][]string

	deletes []string
	purges  []purgeCall
	sends   []sentMessage
	reports []sentReport
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		canManage: true,
		modLogs:   map[string][]string{},
		homes:     map[string][]string{},
	}
}

func (f *fakeGateway) DeleteMessage(channelID, messageID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deletes = append(f.deletes, messageID)
	return nil
}

func (f *fakeGateway) PurgeByAuthor(channelID, authorID string, since time.Time) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.purgeErr != nil {
		return 0, f.purgeErr
	}
	f.purges = append(f.purges, purgeCall{ChannelID: channelID, AuthorID: authorID, Since: since})
	return f.purgeReturn, nil
}

func (f *fakeGateway) Send(channelID, content string, deleteAfter time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sends = append(f.sends, sentMessage{ChannelID: channelID, Content: content, DeleteAfter: deleteAfter})
	return nil
}

func (f *fakeGateway) SendReport(channelID string, r Report) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reports = append(f.reports, sentReport{ChannelID: channelID, Report: r})
	return nil
}

func (f *fakeGateway) CanManageMessages(channelID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.canManage
}

func (f *fakeGateway) ModLogChannels(guildID string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.modLogs[guildID]
}

func (f *fakeGateway) HomeChannels(guildID string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.homes[guildID]
}

func (f *fakeGateway) snapshot() (deletes []string, purges []purgeCall, sends []sentMessage, reports []sentReport) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.deletes...),
		append([]purgeCall(nil), f.purges...),
		append([]sentMessage(nil), f.sends...),
		append([]sentReport(nil), f.reports...)
}
