package notify

import (
	"fmt"

	"betting/events"

	"github.com/bwmarrin/discordgo"
)

// Discord color constants
const (
	ColorPrimary = 0x5865F2 // Discord blurple
	ColorSuccess = 0x57F287 // Green
	ColorDanger  = 0xED4245 // Red
)

func buildPlacedEmbed(e events.BetPlacedEvent) *discordgo.MessageEmbed {
	details := fmt.Sprintf("• Stake: **%s**\n• Odds: **%s** over %d legs\n• Potential win: **%s**",
		e.Amount.StringFixed(2),
		e.Odds.StringFixed(2),
		e.Legs,
		e.WinAmount.StringFixed(2),
	)

	embed := &discordgo.MessageEmbed{
		Title: fmt.Sprintf("Bet #%d placed", e.BetID),
		Color: ColorPrimary,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Bet Details", Value: details},
		},
	}
	if e.DroppedLegs > 0 {
		embed.Footer = &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("%d finished selections were dropped before staking", e.DroppedLegs),
		}
	}
	return embed
}

func buildSettledEmbed(e events.BetSettledEvent) *discordgo.MessageEmbed {
	if e.Won {
		return &discordgo.MessageEmbed{
			Title:       fmt.Sprintf("Bet #%d settled", e.BetID),
			Description: fmt.Sprintf("🎉 **WINNER!** 🎉\nPaid out: **%s**", e.WinAmount.StringFixed(2)),
			Color:       ColorSuccess,
			Fields: []*discordgo.MessageEmbedField{
				{Name: "Stake", Value: e.Amount.StringFixed(2), Inline: true},
				{Name: "Odds", Value: e.Odds.StringFixed(2), Inline: true},
			},
		}
	}

	return &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("Bet #%d settled", e.BetID),
		Description: fmt.Sprintf("**LOSE**\nStake lost: %s", e.Amount.StringFixed(2)),
		Color:       ColorDanger,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Odds", Value: e.Odds.StringFixed(2), Inline: true},
		},
	}
}
