// Package bot runs the Telegram side of the checklist service: read-only
// commands for the duty roster and today's results, plus submission
// notifications to the admin chat
package bot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"energy-checklist-bot/internal/schedule"
)

// DataSource is the slice of the sheet client the commands read from
type DataSource interface {
	GetTodayStatus(ctx context.Context, date string) map[string]json.RawMessage
	GetScores(ctx context.Context) []json.RawMessage
}

var (
	bot          *tgbotapi.BotAPI
	targetChatID int64
	dataSource   DataSource
)

// SetDataSource wires the sheet client used by /today and /scores
func SetDataSource(ds DataSource) {
	dataSource = ds
}

// Init initializes the Telegram Bot
func Init(token string, authorizedChatIDStr string) error {
	var err error
	bot, err = tgbotapi.NewBotAPI(token)
	if err != nil {
		return err
	}

	bot.Debug = false
	log.Printf("Authorized on account %s", bot.Self.UserName)

	if authorizedChatIDStr != "" {
		id, err := strconv.ParseInt(authorizedChatIDStr, 10, 64)
		if err == nil {
			targetChatID = id
		}
	}

	return nil
}

// StartPolling starts the update loop
func StartPolling() {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := bot.GetUpdatesChan(u)

	go func() {
		for update := range updates {
			if update.Message == nil || !update.Message.IsCommand() {
				continue
			}

			msg := tgbotapi.NewMessage(update.Message.Chat.ID, "")
			msg.ParseMode = "Markdown"

			switch update.Message.Command() {
			case "start":
				msg.Text = "📋 *ระบบตรวจเช็คประหยัดพลังงาน*\n\n" +
					"*คำสั่ง:*\n" +
					"/schedule - ตารางตรวจวันนี้\n" +
					"/today - สถานะการบันทึกวันนี้\n" +
					"/scores - คะแนนสะสม"

			case "getid":
				msg.Text = fmt.Sprintf("Chat ID: `%d`", update.Message.Chat.ID)

			case "schedule":
				msg.Text = scheduleText(time.Now())

			case "today":
				msg.Text = todayText(time.Now())

			case "scores":
				msg.Text = scoresText()

			default:
				msg.Text = "ไม่รู้จักคำสั่ง ใช้ /start"
			}

			if _, err := bot.Send(msg); err != nil {
				log.Printf("Bot send error: %v", err)
			}
		}
	}()
}

func scheduleText(now time.Time) string {
	inspectors := schedule.Static{}.InspectorsOn(now)
	if len(inspectors) == 0 {
		return fmt.Sprintf("🎉 วันหยุด ไม่มีตารางตรวจในวัน%s", schedule.ThaiDayOfWeek(now))
	}

	text := fmt.Sprintf("🗓 *ตารางตรวจวัน%s %s*\n\n", schedule.ThaiDayOfWeek(now), schedule.FormatThaiDate(now))
	for _, ins := range inspectors {
		text += fmt.Sprintf("👤 %s → 🏢 %s\n", ins.Name, ins.BuildingName)
	}
	return text
}

func todayText(now time.Time) string {
	if dataSource == nil {
		return "ยังไม่ได้เชื่อมต่อ Google Sheet"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	status := dataSource.GetTodayStatus(ctx, now.Format(schedule.DateFormat))
	if len(status) == 0 {
		return "ยังไม่มีการบันทึกผลตรวจวันนี้"
	}

	text := fmt.Sprintf("📊 *สถานะวันนี้* (%d อาคาร)\n\n", len(status))
	for building, raw := range status {
		text += fmt.Sprintf("🏢 `%s`: %s\n", building, compactJSON(raw))
	}
	return text
}

func scoresText() string {
	if dataSource == nil {
		return "ยังไม่ได้เชื่อมต่อ Google Sheet"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	scores := dataSource.GetScores(ctx)
	if len(scores) == 0 {
		return "ยังไม่มีคะแนนสะสม"
	}

	text := fmt.Sprintf("🏆 *คะแนนสะสม* (%d รายการ)\n\n", len(scores))
	for _, raw := range scores {
		text += fmt.Sprintf("• %s\n", compactJSON(raw))
	}
	return text
}

// compactJSON renders an opaque sheet row on a single line
func compactJSON(raw json.RawMessage) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}

// SendNotification sends a message to the admin chat
func SendNotification(message string) {
	if bot == nil || targetChatID == 0 {
		return
	}
	msg := tgbotapi.NewMessage(targetChatID, message)
	msg.ParseMode = "Markdown"
	if _, err := bot.Send(msg); err != nil {
		log.Printf("Failed to send: %v", err)
	}
}
