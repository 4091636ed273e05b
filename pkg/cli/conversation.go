package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/mentorag/pkg/domain/model"
	"github.com/secmon-lab/mentorag/pkg/domain/types"
	"github.com/urfave/cli/v3"
)

func cmdConversations() *cli.Command {
	var mentorID string

	return dataCommand(&cli.Command{
		Name:  "conversations",
		Usage: "List a mentor's conversations, most recent first",
		Flags: []cli.Flag{mentorFlag(&mentorID)},
	}, 0, func(ctx context.Context, c *cli.Command, rt *runtime) error {
		convs, err := rt.uc.Chat.Conversations(ctx, model.MentorID(mentorID))
		if err != nil {
			return goerr.Wrap(err, "failed to list conversations")
		}

		p := newPrinter(c.Root().Writer)
		for _, conv := range convs {
			p.Printf("%s  %s %s\n", conv.ID, p.title(conv.Title), p.dim(conv.UpdatedAt.Format("2006-01-02 15:04")))
		}
		return nil
	})
}

func cmdMessages() *cli.Command {
	var conversationID string

	return dataCommand(&cli.Command{
		Name:  "messages",
		Usage: "Show a conversation",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "conversation",
				Usage:       "Conversation ID",
				Required:    true,
				Destination: &conversationID,
			},
		},
	}, 0, func(ctx context.Context, c *cli.Command, rt *runtime) error {
		msgs, err := rt.uc.Chat.Messages(ctx, model.ConversationID(conversationID))
		if err != nil {
			return goerr.Wrap(err, "failed to list messages")
		}

		p := newPrinter(c.Root().Writer)
		for _, m := range msgs {
			speaker := p.label("user:")
			if m.Sender == types.SenderMentor {
				speaker = p.title("mentor:")
			}
			p.Printf("%s %s\n", speaker, m.Text)
			p.Citations(m.Citations)
		}
		return nil
	})
}
