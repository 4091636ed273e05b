package cli

import (
	"bufio"
	"context"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/mentorag/pkg/domain/model"
	"github.com/secmon-lab/mentorag/pkg/domain/types"
	"github.com/secmon-lab/mentorag/pkg/usecase"
	"github.com/urfave/cli/v3"
)

func cmdAsk() *cli.Command {
	var mentorID, conversationID, userID, provider string

	return dataCommand(&cli.Command{
		Name:      "ask",
		Aliases:   []string{"a"},
		Usage:     "Ask a mentor a question; without arguments, chat interactively",
		ArgsUsage: "[QUESTION...]",
		Flags: []cli.Flag{
			mentorFlag(&mentorID),
			&cli.StringFlag{
				Name:        "conversation",
				Usage:       "Continue an existing conversation",
				Destination: &conversationID,
			},
			&cli.StringFlag{
				Name:        "user",
				Usage:       "ID of the user asking",
				Sources:     cli.EnvVars("MENTORAG_USER"),
				Destination: &userID,
			},
			&cli.StringFlag{
				Name:        "provider",
				Usage:       "Provider to try first for this question (openai, claude or gemini)",
				Destination: &provider,
			},
		},
	}, needEmbedding|needLLM, func(ctx context.Context, c *cli.Command, rt *runtime) error {
		input := usecase.AskInput{
			MentorID:       model.MentorID(mentorID),
			ConversationID: model.ConversationID(conversationID),
			UserID:         userID,
		}
		if provider != "" {
			name, err := types.ParseProviderName(provider)
			if err != nil {
				return goerr.Wrap(err, "invalid --provider")
			}
			input.Preferred = name
		}

		p := newPrinter(c.Root().Writer)

		if question := strings.Join(c.Args().Slice(), " "); question != "" {
			input.Question = question
			_, err := ask(ctx, p, rt, input)
			return err
		}

		p.Printf("%s\n", p.title("Type a question and press Enter. An empty line or 'exit' ends the chat."))
		scanner := bufio.NewScanner(c.Root().Reader)
		for {
			p.Printf("%s ", p.label(">"))
			if !scanner.Scan() {
				break
			}
			line := strings.TrimSpace(scanner.Text())
			if line == "" || strings.EqualFold(line, "exit") {
				break
			}

			input.Question = line
			answer, err := ask(ctx, p, rt, input)
			if err != nil {
				return err
			}
			input.ConversationID = answer.ConversationID
		}
		return scanner.Err()
	})
}

func ask(ctx context.Context, p *printer, rt *runtime, input usecase.AskInput) (*usecase.Answer, error) {
	answer, err := rt.uc.Chat.Ask(ctx, input)
	if err != nil {
		return nil, p.report(goerr.Wrap(err, "failed to answer question"))
	}

	p.Printf("\n%s %s\n", p.title(answer.MentorName+":"), answer.Text)
	p.Citations(answer.Citations)
	p.Printf("%s\n\n", p.dim("conversation "+string(answer.ConversationID)+", "+answer.ProviderUsed.String()+" provider "+string(answer.ProviderName)))
	return answer, nil
}
