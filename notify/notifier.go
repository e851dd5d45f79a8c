package notify

import (
	"context"
	"fmt"

	"betting/events"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// sender is the part of *discordgo.Session the notifier uses
type sender interface {
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Notifier posts bet activity to a Discord channel
type Notifier struct {
	session   sender
	channelID string
	closer    func() error
}

// NewDiscordNotifier opens a bot session for token and posts to channelID
func NewDiscordNotifier(token, channelID string) (*Notifier, error) {
	dg, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("error creating Discord session: %w", err)
	}

	if err := dg.Open(); err != nil {
		return nil, fmt.Errorf("error opening connection: %w", err)
	}

	log.WithField("channelID", channelID).Info("Discord notifier connected")

	return &Notifier{
		session:   dg,
		channelID: channelID,
		closer:    dg.Close,
	}, nil
}

func newNotifier(s sender, channelID string) *Notifier {
	return &Notifier{session: s, channelID: channelID}
}

// Attach subscribes the notifier to placed and settled bets
func (n *Notifier) Attach(bus *events.Bus) {
	bus.Subscribe(events.EventTypeBetPlaced, n.handle)
	bus.Subscribe(events.EventTypeBetSettled, n.handle)
}

func (n *Notifier) handle(_ context.Context, event events.Event) {
	var embed *discordgo.MessageEmbed
	switch e := event.(type) {
	case events.BetPlacedEvent:
		embed = buildPlacedEmbed(e)
	case events.BetSettledEvent:
		embed = buildSettledEmbed(e)
	default:
		return
	}

	if _, err := n.session.ChannelMessageSendEmbed(n.channelID, embed); err != nil {
		log.WithFields(log.Fields{
			"channelID": n.channelID,
			"eventType": event.Type(),
			"error":     err,
		}).Error("Failed to send Discord notification")
	}
}

// Close closes the Discord session
func (n *Notifier) Close() error {
	if n.closer == nil {
		return nil
	}
	return n.closer()
}
