// Package api provides handlers for external APIs and interfaces
package api

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/abelzeko/angler-bot/internal/entities"
	"github.com/abelzeko/angler-bot/internal/usecases"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

const helpText = "Available commands:\n" +
	"/start - Start the bot\n" +
	"/locations - Show your saved fishing spots\n" +
	"/addlocation <name> - Add a spot by name\n" +
	"/addlocation <name> | <lat> <lon> [tide station] - Add a spot by coordinates\n" +
	"/addlocation <name> | <NMEA sentence> - Add a spot from a GPS fix\n" +
	"/weather [spot] - Current weather\n" +
	"/tide [spot] - Tide state and next high/low\n" +
	"/gear [spot] [clear|stained|murky] - Gear recommendations\n" +
	"/species <a, b, ...> - Set target species (\"any\" to clear)\n" +
	"/level <beginner|intermediate|expert> - Set experience level\n" +
	"/home <spot> - Set your home spot\n" +
	"/favorite <item id> - Toggle a favorite item\n" +
	"/notify <alerts|tides|digest> <on|off> - Notification settings\n" +
	"/prefs - Show your preferences\n" +
	"/help - Show this help message\n\n" +
	"When no spot is given your home spot is used."

// requestTimeout bounds the remote lookups done for a single message
const requestTimeout = 30 * time.Second

// Sender is the part of the Telegram client the bot needs
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramBot handles interactions with the Telegram API
type TelegramBot struct {
	bot     *tgbotapi.BotAPI
	sender  Sender
	useCase *usecases.AnglerUseCase
}

// NewTelegramBot creates a new Telegram bot handler
func NewTelegramBot(botToken string, useCase *usecases.AnglerUseCase) (*TelegramBot, error) {
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	return &TelegramBot{
		bot:     bot,
		sender:  bot,
		useCase: useCase,
	}, nil
}

// Start begins listening for and handling Telegram messages. It returns when ctx is cancelled.
func (t *TelegramBot) Start(ctx context.Context) {
	log.Info().Str("account", t.bot.Self.UserName).Msg("Authorized on Telegram account")

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := t.bot.GetUpdatesChan(u)
	log.Info().Msg("Bot is now listening for messages...")

	for {
		select {
		case <-ctx.Done():
			t.bot.StopReceivingUpdates()
			log.Info().Msg("Bot stopped")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message == nil {
				continue
			}

			t.handleMessage(ctx, update.Message)
		}
	}
}

// Schedule registers the digest and alert jobs on the cron scheduler
func (t *TelegramBot) Schedule(c *cron.Cron, digestSpec, alertSpec string) error {
	if _, err := c.AddFunc(digestSpec, func() { t.runJob("digest", t.useCase.DailyDigests) }); err != nil {
		return fmt.Errorf("failed to schedule digest: %w", err)
	}
	_, err := c.AddFunc(alertSpec, func() {
		t.runJob("weather alerts", t.useCase.WeatherAlerts)
		t.runJob("tide notices", t.useCase.TideNotices)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule alerts: %w", err)
	}
	return nil
}

func (t *TelegramBot) runJob(name string, build func(context.Context) ([]usecases.Notification, error)) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	notes, err := build(ctx)
	if err != nil {
		log.Error().Err(err).Str("job", name).Msg("Scheduled job failed")
		return
	}
	sent := t.Deliver(notes)
	log.Info().Str("job", name).Int("sent", sent).Int("total", len(notes)).Msg("Scheduled job finished")
}

// Deliver sends notifications to their chats and returns how many were sent
func (t *TelegramBot) Deliver(notes []usecases.Notification) int {
	sent := 0
	for _, n := range notes {
		chatID, err := strconv.ParseInt(n.UserID, 10, 64)
		if err != nil {
			log.Warn().Str("user", n.UserID).Msg("User id is not a Telegram chat id, skipping")
			continue
		}
		if _, err := t.sender.Send(tgbotapi.NewMessage(chatID, n.Text)); err != nil {
			log.Error().Err(err).Int64("chat", chatID).Msg("Error sending notification")
			continue
		}
		sent++
	}
	return sent
}

// handleMessage processes a Telegram message
func (t *TelegramBot) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	// Channel posts carry no sender
	var sender string
	if message.From != nil {
		sender = message.From.UserName
	}
	log.Info().
		Str("user", sender).
		Int64("chat_id", message.Chat.ID).
		Str("text", message.Text).
		Msg("Received message")

	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	msg := tgbotapi.NewMessage(message.Chat.ID, t.respond(ctx, message))

	log.Debug().Str("user", sender).Msg("Sending response")
	if _, err := t.sender.Send(msg); err != nil {
		log.Error().Err(err).Msg("Error sending message")
	}
}

// respond builds the reply text for a message
func (t *TelegramBot) respond(ctx context.Context, message *tgbotapi.Message) string {
	if message.IsCommand() {
		return t.handleCommand(ctx, message)
	}
	return t.handleNonCommand(ctx, message)
}

// handleCommand processes commands like /start, /help, etc.
func (t *TelegramBot) handleCommand(ctx context.Context, message *tgbotapi.Message) string {
	userID := chatUserID(message)
	args := strings.TrimSpace(message.CommandArguments())
	log.Info().Str("command", message.Command()).Str("args", args).Str("user", userID).Msg("Handling command")

	switch message.Command() {
	case "start":
		return "Welcome to Angler Bot! Add a fishing spot with /addlocation, then ask for /weather, /tide or /gear. Use /help for more information."
	case "help":
		return helpText
	case "locations":
		locations, err := t.useCase.ListLocations()
		if err != nil {
			return t.fail(err)
		}
		return usecases.FormatLocations(locations)
	case "addlocation":
		return t.handleAddLocation(ctx, args)
	case "weather":
		loc, err := t.resolveLocation(userID, args)
		if err != nil {
			return t.fail(err)
		}
		res, err := t.useCase.GetWeather(ctx, loc)
		if err != nil {
			return t.fail(err)
		}
		return usecases.FormatWeather(loc, res)
	case "tide":
		loc, err := t.resolveLocation(userID, args)
		if err != nil {
			return t.fail(err)
		}
		res, err := t.useCase.GetTide(ctx, loc)
		if err != nil {
			return t.fail(err)
		}
		return usecases.FormatTide(loc, res)
	case "gear":
		return t.handleGear(ctx, userID, args)
	case "species":
		return t.updatePrefs(userID, func(p *entities.UserPreferences) error {
			if args == "" {
				return entities.NewValidationError("Please list species, e.g. /species bass, trout")
			}
			if strings.EqualFold(args, "any") {
				p.TargetSpecies = []string{}
				return nil
			}
			p.TargetSpecies = strings.Split(args, ",")
			return nil
		})
	case "level":
		return t.updatePrefs(userID, func(p *entities.UserPreferences) error {
			p.ExperienceLevel = entities.SkillLevel(strings.ToLower(args))
			return nil
		})
	case "home":
		loc, err := t.useCase.FindLocation(args)
		if err != nil {
			return t.fail(err)
		}
		return t.updatePrefs(userID, func(p *entities.UserPreferences) error {
			p.HomeLocationID = loc.ID
			return nil
		})
	case "favorite":
		if args == "" {
			return "Please give an item id, as shown in brackets by /gear."
		}
		prefs, err := t.useCase.GetPreferences(userID)
		if err != nil {
			return t.fail(err)
		}
		on := !prefs.IsFavorite(args)
		if _, err := t.useCase.SetFavorite(userID, args, on); err != nil {
			return t.fail(err)
		}
		if on {
			return fmt.Sprintf("⭐ %s added to your favorites.", args)
		}
		return fmt.Sprintf("%s removed from your favorites.", args)
	case "notify":
		return t.handleNotify(userID, args)
	case "prefs":
		return t.showPrefs(userID)
	default:
		log.Info().Str("command", message.Command()).Msg("Received unknown command")
		return "Unknown command. Use /help to see available commands."
	}
}

func (t *TelegramBot) handleAddLocation(ctx context.Context, args string) string {
	if args == "" {
		return "Please specify a spot. Example: /addlocation Montauk Point | 41.07 -71.86 8510560"
	}

	name, rest, _ := strings.Cut(args, "|")
	req := usecases.AddLocationRequest{Name: strings.TrimSpace(name)}
	rest = strings.TrimSpace(rest)

	switch {
	case rest == "":
	case strings.HasPrefix(rest, "$") || strings.HasPrefix(rest, "!"):
		req.NMEASentence = rest
	default:
		fields := strings.Fields(rest)
		if len(fields) < 2 || len(fields) > 3 {
			return "Coordinates must be given as <lat> <lon> [tide station]."
		}
		lat, errLat := strconv.ParseFloat(fields[0], 64)
		lon, errLon := strconv.ParseFloat(fields[1], 64)
		if errLat != nil || errLon != nil {
			return "Coordinates must be decimal numbers, e.g. 41.07 -71.86."
		}
		req.Latitude, req.Longitude = &lat, &lon
		if len(fields) == 3 {
			req.TideStation = fields[2]
		}
	}

	loc, err := t.useCase.AddLocation(ctx, req)
	if err != nil {
		return t.fail(err)
	}
	text := fmt.Sprintf("📍 Added %s (%.4f, %.4f).", loc.Name, loc.Latitude, loc.Longitude)
	if loc.HasTide() {
		text += fmt.Sprintf(" Tide station %s.", loc.TideStation)
	}
	return text
}

func (t *TelegramBot) handleGear(ctx context.Context, userID, args string) string {
	in := usecases.ConditionInputs{}
	fields := strings.Fields(args)
	if n := len(fields); n > 0 && entities.IsValidClarity(strings.ToLower(fields[n-1])) {
		in.WaterClarity = strings.ToLower(fields[n-1])
		args = strings.Join(fields[:n-1], " ")
	}

	loc, err := t.resolveLocation(userID, args)
	if err != nil {
		return t.fail(err)
	}
	report, err := t.useCase.GetRecommendations(ctx, loc, userID, in, 0)
	if err != nil {
		return t.fail(err)
	}
	return usecases.FormatRecommendations(report)
}

func (t *TelegramBot) handleNotify(userID, args string) string {
	fields := strings.Fields(strings.ToLower(args))
	if len(fields) != 2 || (fields[1] != "on" && fields[1] != "off") {
		return "Usage: /notify <alerts|tides|digest> <on|off>"
	}
	on := fields[1] == "on"

	return t.updatePrefs(userID, func(p *entities.UserPreferences) error {
		switch fields[0] {
		case "alerts":
			p.NotifyWeatherAlerts = on
		case "tides":
			p.NotifyTideChanges = on
		case "digest":
			p.NotifyDailyDigest = on
		default:
			return entities.NewValidationError("Choose one of alerts, tides or digest.")
		}
		if on && p.HomeLocationID == "" {
			return entities.NewValidationError("Set a home spot with /home first, notifications are about your home spot.")
		}
		return nil
	})
}

// updatePrefs loads the user's preferences, applies change, saves and shows the result
func (t *TelegramBot) updatePrefs(userID string, change func(*entities.UserPreferences) error) string {
	prefs, err := t.useCase.GetPreferences(userID)
	if err != nil {
		return t.fail(err)
	}
	if err := change(&prefs); err != nil {
		return t.fail(err)
	}
	if _, err := t.useCase.UpdatePreferences(prefs); err != nil {
		return t.fail(err)
	}
	return "✅ Saved.\n\n" + t.showPrefs(userID)
}

func (t *TelegramBot) showPrefs(userID string) string {
	prefs, err := t.useCase.GetPreferences(userID)
	if err != nil {
		return t.fail(err)
	}
	home := ""
	if prefs.HomeLocationID != "" {
		if loc, err := t.useCase.GetLocation(prefs.HomeLocationID); err == nil {
			home = loc.Name
		}
	}
	return usecases.FormatPreferences(prefs, home)
}

// resolveLocation finds the named spot, or the user's home spot when no name is given
func (t *TelegramBot) resolveLocation(userID, name string) (entities.Location, error) {
	if strings.TrimSpace(name) != "" {
		return t.useCase.FindLocation(name)
	}
	prefs, err := t.useCase.GetPreferences(userID)
	if err != nil {
		return entities.Location{}, err
	}
	if prefs.HomeLocationID == "" {
		return entities.Location{}, entities.NewValidationError("Please specify a spot, or set a home spot with /home.")
	}
	return t.useCase.GetLocation(prefs.HomeLocationID)
}

// handleNonCommand processes regular messages
func (t *TelegramBot) handleNonCommand(ctx context.Context, message *tgbotapi.Message) string {
	if strings.TrimSpace(message.Text) == "" {
		return "I don't understand. Use /help to see available commands."
	}

	reply, err := t.useCase.HandleNaturalLanguageQuery(ctx, chatUserID(message), message.Text)
	if err != nil || reply == "" {
		return "I don't understand. Use /help to see available commands."
	}
	return reply
}

// fail logs unexpected errors and returns the user-facing message
func (t *TelegramBot) fail(err error) string {
	if !entities.IsValidationError(err) {
		log.Warn().Err(err).Msg("Command failed")
	}
	return usecases.UserMessage(err)
}

// chatUserID keys preferences by chat so notifications can be sent back to it
func chatUserID(message *tgbotapi.Message) string {
	return strconv.FormatInt(message.Chat.ID, 10)
}
