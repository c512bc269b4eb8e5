package telegram

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	tb "gopkg.in/tucnak/telebot.v2"

	"gitlab.com/vantagelabs/SignalVantage/models"
)

// TelegramService pushes resolution alerts to the subscriber channel. Delivery
// is best effort: the tracker logs failures and moves on.
type TelegramService struct {
	token  string
	chatId string
}

func NewTelegramService() *TelegramService {
	return &TelegramService{
		token:  os.Getenv("telegramToken"),
		chatId: os.Getenv("telegramChatId"),
	}
}

func init() {
	cwd, _ := os.Getwd()
	confFile := os.Getenv("CONF_FILE")
	if confFile == "" {
		confFile = "/conf.env"
	}
	_ = godotenv.Load(cwd + confFile)
}

func (ts *TelegramService) NotifySignalResolved(signal *models.Signal, newStatus models.SignalStatus, pnlPercent float64) error {
	b, err := tb.NewBot(tb.Settings{
		URL:    "",
		Token:  ts.token,
		Poller: &tb.LongPoller{Timeout: 10 * time.Second},
	})
	if err != nil {
		return err
	}

	id, err := b.ChatByID(ts.chatId)
	if err != nil {
		return err
	}
	_, err = b.Send(id, formatResolution(signal, newStatus, pnlPercent))
	return err
}

func formatResolution(signal *models.Signal, newStatus models.SignalStatus, pnlPercent float64) string {
	emoji := "🎯"
	if newStatus == models.SignalStatusHitSL {
		emoji = "🛑"
	}
	label := strings.ToUpper(strings.Replace(string(newStatus), "_", " ", -1))
	return fmt.Sprintf("%s %s %s %s: %s (%+.2f%%)",
		emoji, strings.ToUpper(string(signal.Category)), signal.Symbol,
		strings.ToUpper(string(signal.Direction)), label, pnlPercent)
}
