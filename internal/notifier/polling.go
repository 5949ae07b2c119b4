package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

// Message is one inbound chat message with the sender's identity.
type Message struct {
	ChatID   int64
	UserID   int64
	Username string
	Text     string
	SentAt   time.Time
}

// MessageHandler is called for each inbound message; a non-empty return value
// is sent back to the originating chat.
type MessageHandler func(msg Message) string

// telegramUpdate represents a Telegram update from long polling.
type telegramUpdate struct {
	UpdateID int `json:"update_id"`
	Message  *struct {
		Date int64  `json:"date"`
		Text string `json:"text"`
		From *struct {
			ID        int64  `json:"id"`
			Username  string `json:"username"`
			FirstName string `json:"first_name"`
		} `json:"from"`
		Chat *struct {
			ID int64 `json:"id"`
		} `json:"chat"`
	} `json:"message"`
}

// StartPolling begins long-polling for chat messages. Blocks until ctx is cancelled.
func (t *TelegramNotifier) StartPolling(ctx context.Context, handler MessageHandler) {
	offset := 0
	client := &http.Client{Timeout: 35 * time.Second}

	for {
		select {
		case <-ctx.Done():
			log.Println("[INFO] Telegram polling stopped")
			return
		default:
		}

		apiURL := fmt.Sprintf("%s/bot%s/getUpdates?offset=%d&timeout=30", t.apiBase, t.BotToken, offset)
		req, err := http.NewRequestWithContext(ctx, "GET", apiURL, nil)
		if err != nil {
			log.Printf("[ERROR] create polling request: %v", err)
			time.Sleep(5 * time.Second)
			continue
		}

		resp, err := client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Printf("[WARN] polling request failed: %v", err)
			time.Sleep(5 * time.Second)
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			log.Printf("[WARN] read polling response: %v", err)
			continue
		}

		var result struct {
			OK     bool             `json:"ok"`
			Result []telegramUpdate `json:"result"`
		}
		if err := json.Unmarshal(body, &result); err != nil {
			log.Printf("[WARN] decode polling response: %v", err)
			continue
		}

		for _, update := range result.Result {
			offset = update.UpdateID + 1
			m := update.Message
			if m == nil || m.Text == "" || m.From == nil || m.Chat == nil {
				continue
			}

			name := m.From.Username
			if name == "" {
				name = m.From.FirstName
			}
			msg := Message{
				ChatID:   m.Chat.ID,
				UserID:   m.From.ID,
				Username: name,
				Text:     strings.TrimSpace(m.Text),
				SentAt:   time.Unix(m.Date, 0),
			}
			log.Printf("[INFO] received message from %d: %s", msg.UserID, msg.Text)

			reply := handler(msg)
			if reply != "" {
				if err := t.SendWithRetry(ctx, msg.ChatID, reply, 3); err != nil {
					log.Printf("[ERROR] send reply: %v", err)
				}
			}
		}
	}
}
