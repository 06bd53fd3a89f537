package deliver

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// MaxMessageLen is Telegram's limit on message text.
const MaxMessageLen = 4096

type Telegram struct {
	token    string
	chatID   int64
	endpoint string
	client   *http.Client
}

func NewTelegram(token string, chatID int64) *Telegram {
	return &Telegram{token: token, chatID: chatID, endpoint: tgbotapi.APIEndpoint, client: &http.Client{}}
}

func (t *Telegram) Name() string { return "telegram" }

func (t *Telegram) Deliver(ctx context.Context, d Digest) error {
	api, err := tgbotapi.NewBotAPIWithClient(t.token, t.endpoint, t.client)
	if err != nil {
		return fmt.Errorf("connecting bot: %w", err)
	}
	chunks := Chunk(d.plain(), MaxMessageLen)
	for i, c := range chunks {
		if err := ctx.Err(); err != nil {
			return err
		}
		msg := tgbotapi.NewMessage(t.chatID, c)
		msg.DisableWebPagePreview = true
		if _, err := api.Send(msg); err != nil {
			return fmt.Errorf("sending part %d/%d: %w", i+1, len(chunks), err)
		}
	}
	return nil
}

// Chunk splits s into pieces of at most limit runes, breaking on line
// boundaries where it can. Lines longer than limit are cut.
func Chunk(s string, limit int) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	var (
		chunks []string
		cur    strings.Builder
		curLen int
	)
	flush := func() {
		if t := strings.TrimSpace(cur.String()); t != "" {
			chunks = append(chunks, t)
		}
		cur.Reset()
		curLen = 0
	}
	for _, line := range strings.Split(s, "\n") {
		for utf8.RuneCountInString(line) > limit {
			flush()
			runes := []rune(line)
			chunks = append(chunks, string(runes[:limit]))
			line = string(runes[limit:])
		}
		n := utf8.RuneCountInString(line)
		sep := 0
		if curLen > 0 {
			sep = 1
		}
		if curLen+sep+n > limit {
			flush()
			sep = 0
		}
		if sep == 1 {
			cur.WriteByte('\n')
		}
		cur.WriteString(line)
		curLen += sep + n
	}
	flush()
	return chunks
}
