package api

import (
	"context"
	"strings"
	"testing"

	"github.com/abelzeko/angler-bot/internal/usecases"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	sent []tgbotapi.MessageConfig
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		f.sent = append(f.sent, msg)
	}
	return tgbotapi.Message{}, nil
}

const chatID int64 = 4242

func newTestBot(t *testing.T) (*TelegramBot, *testEnv, *fakeSender) {
	env := newTestEnv(t)
	sender := &fakeSender{}
	return &TelegramBot{sender: sender, useCase: env.uc}, env, sender
}

func message(text string) *tgbotapi.Message {
	msg := &tgbotapi.Message{
		Text: text,
		Chat: &tgbotapi.Chat{ID: chatID},
		From: &tgbotapi.User{ID: chatID, UserName: "angler"},
	}
	if strings.HasPrefix(text, "/") {
		cmd := strings.Fields(text)[0]
		msg.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(cmd)}}
	}
	return msg
}

func (t *TelegramBot) reply(text string) string {
	return t.respond(context.Background(), message(text))
}

func TestBotBasics(t *testing.T) {
	bot, _, _ := newTestBot(t)

	assert.Contains(t, bot.reply("/start"), "Welcome")
	assert.Contains(t, bot.reply("/help"), "/gear")
	assert.Contains(t, bot.reply("/locations"), "No fishing spots saved yet")
	assert.Contains(t, bot.reply("/frobnicate"), "Unknown command")
	assert.Equal(t, usecases.QueryHelpHint, bot.reply("where are the fish?"))
}

func TestBotAddLocationAndConditions(t *testing.T) {
	bot, _, _ := newTestBot(t)

	reply := bot.reply("/addlocation Montauk Point | 41.07 -71.86 8510560")
	assert.Contains(t, reply, "Added Montauk Point")
	assert.Contains(t, reply, "8510560")

	assert.Contains(t, bot.reply("/addlocation Nowhere | north south"), "decimal numbers")
	assert.Contains(t, bot.reply("/addlocation Lake Bled"), "can't look up places")
	assert.Contains(t, bot.reply("/addlocation"), "Please specify a spot")
	assert.Contains(t, bot.reply("/locations"), "Montauk Point")

	assert.Contains(t, bot.reply("/weather montauk"), "Weather for Montauk Point")
	assert.Contains(t, bot.reply("/tide Montauk Point"), "Next high")
	assert.Contains(t, bot.reply("/weather"), "set a home spot")

	gear := bot.reply("/gear montauk murky")
	assert.Contains(t, gear, "Gear for Montauk Point")
	assert.Contains(t, gear, "Water: murky")
	assert.Contains(t, gear, "ROD")
}

func TestBotPreferences(t *testing.T) {
	bot, env, _ := newTestBot(t)
	env.addLocation(t, "home", "Home Lake", "")

	assert.Contains(t, bot.reply("/species Bass, trout"), "Species: bass, trout")
	assert.Contains(t, bot.reply("/level expert"), "Level: expert")
	assert.Contains(t, bot.reply("/level guru"), "experience level")
	assert.Contains(t, bot.reply("/notify digest on"), "/home first")
	assert.Contains(t, bot.reply("/home home lake"), "Home spot: Home Lake")
	assert.Contains(t, bot.reply("/notify digest on"), "digest on")
	assert.Contains(t, bot.reply("/notify sometimes"), "Usage")

	assert.Contains(t, bot.reply("/favorite rod-medium-spinning"), "added to your favorites")
	assert.Contains(t, bot.reply("/prefs"), "Favorites: rod-medium-spinning")
	assert.Contains(t, bot.reply("/favorite rod-medium-spinning"), "removed")
	assert.Contains(t, bot.reply("/favorite nope"), "unknown equipment")

	// With a home spot the location can be omitted
	assert.Contains(t, bot.reply("/weather"), "Weather for Home Lake")
	assert.Contains(t, bot.reply("/tide"), "no tide station")
}

func TestBotHandleMessageSends(t *testing.T) {
	bot, _, sender := newTestBot(t)

	bot.handleMessage(context.Background(), message("/start"))
	require.Len(t, sender.sent, 1)
	assert.Equal(t, chatID, sender.sent[0].ChatID)
	assert.Contains(t, sender.sent[0].Text, "Welcome")
}

func TestBotDeliver(t *testing.T) {
	bot, _, sender := newTestBot(t)

	sent := bot.Deliver([]usecases.Notification{
		{UserID: "4242", Text: "Good morning"},
		{UserID: "web-user", Text: "skipped"},
	})
	assert.Equal(t, 1, sent)
	require.Len(t, sender.sent, 1)
	assert.Equal(t, int64(4242), sender.sent[0].ChatID)
}

func TestHandleMessageWithoutSender(t *testing.T) {
	bot, _, sender := newTestBot(t)

	post := message("/help")
	post.From = nil
	bot.handleMessage(context.Background(), post)

	require.Len(t, sender.sent, 1)
	assert.Equal(t, chatID, sender.sent[0].ChatID)
	assert.Contains(t, sender.sent[0].Text, "/gear")
}
