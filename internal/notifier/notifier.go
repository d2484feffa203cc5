package notifier

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/kovalyov-valentin/trendoai/internal/botkit/markup"
	"github.com/kovalyov-valentin/trendoai/internal/metrics"
)

const (
	// Лимиты телеграма
	MaxMessageLength = 4096
	MaxCaptionLength = 1024

	TruncateSuffix = "\n\n... (davomi saytda)"

	sendAttempts = 3
	// Первая пауза между попытками, дальше удваивается: 2s, 4s
	sendRetryDelay = 2 * time.Second
)

var ErrNoChannel = errors.New("telegram channel is not configured")

// Канал, куда уходят опубликованные статьи
type Channel struct {
	// Инстанс клиента botAPI
	bot *tgbotapi.BotAPI
	// Числовой id канала или @username
	channelID       int64
	channelUsername string
	// Пауза между попытками, в тестах подменяем
	sleep func(ctx context.Context, d time.Duration) error
}

// New принимает канал в виде -100123 или @trendoai
func New(bot *tgbotapi.BotAPI, channel string) *Channel {
	c := &Channel{
		bot:   bot,
		sleep: sleep,
	}

	if id, err := strconv.ParseInt(channel, 10, 64); err == nil {
		c.channelID = id
	} else {
		c.channelUsername = channel
	}

	return c
}

// SendText отправляет MarkdownV2 сообщение. Если телеграм не смог разобрать разметку,
// следующая попытка уходит обычным текстом
func (c *Channel) SendText(ctx context.Context, text string) error {
	return c.send(ctx, markup.TruncateMarkdown(text, MaxMessageLength, TruncateSuffix), tgbotapi.ModeMarkdownV2)
}

// SendPlain отправляет текст без разметки, как его написала модель
func (c *Channel) SendPlain(ctx context.Context, text string) error {
	return c.send(ctx, markup.Truncate(text, MaxMessageLength, TruncateSuffix), "")
}

func (c *Channel) send(ctx context.Context, text, parseMode string) error {
	if c.bot == nil || (c.channelID == 0 && c.channelUsername == "") {
		return ErrNoChannel
	}

	msg := tgbotapi.NewMessage(c.channelID, text)
	msg.ChannelUsername = c.channelUsername
	msg.ParseMode = parseMode

	var (
		lastErr error
		delays  = newSendBackOff()
	)

	for attempt := 0; attempt < sendAttempts; attempt++ {
		_, err := c.bot.Send(msg)
		if err == nil {
			metrics.Deliveries.WithLabelValues("text", "ok").Inc()
			return nil
		}
		lastErr = err

		if msg.ParseMode != "" && isParseError(err) {
			log.Printf("[WARN] telegram could not parse markdown, sending as plain text: %v", err)
			msg.ParseMode = ""
			continue
		}

		log.Printf("[WARN] telegram send failed (attempt %d/%d): %v", attempt+1, sendAttempts, err)

		if attempt < sendAttempts-1 {
			if err := c.sleep(ctx, delays.NextBackOff()); err != nil {
				return err
			}
		}
	}

	metrics.Deliveries.WithLabelValues("text", "failed").Inc()

	return fmt.Errorf("send message: %w", lastErr)
}

// SendPhoto отправляет картинку по url с подписью. Без повторов: при ошибке вызывающий шлет текст
func (c *Channel) SendPhoto(ctx context.Context, photoURL, caption string) error {
	if c.bot == nil || (c.channelID == 0 && c.channelUsername == "") {
		return ErrNoChannel
	}

	photo := tgbotapi.NewPhoto(c.channelID, tgbotapi.FileURL(photoURL))
	photo.ChannelUsername = c.channelUsername
	photo.Caption = markup.TruncateMarkdown(caption, MaxCaptionLength, TruncateSuffix)
	photo.ParseMode = tgbotapi.ModeMarkdownV2

	if _, err := c.bot.Send(photo); err != nil {
		metrics.Deliveries.WithLabelValues("photo", "failed").Inc()
		return fmt.Errorf("send photo: %w", err)
	}

	metrics.Deliveries.WithLabelValues("photo", "ok").Inc()

	return nil
}

func isParseError(err error) bool {
	return strings.Contains(strings.ToLower(err.Error()), "parse entities")
}

func newSendBackOff() *backoff.ExponentialBackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = sendRetryDelay
	bo.RandomizationFactor = 0
	bo.Multiplier = 2
	bo.MaxInterval = time.Minute
	return bo
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
