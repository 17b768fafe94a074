package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/fable/internal/api"
	"github.com/jackzampolin/fable/internal/book"
	"github.com/jackzampolin/fable/internal/builder"
	"github.com/jackzampolin/fable/internal/config"
	"github.com/jackzampolin/fable/internal/imagejob"
	"github.com/jackzampolin/fable/internal/prompts"
	"github.com/jackzampolin/fable/internal/prompts/characters"
	"github.com/jackzampolin/fable/internal/prompts/concepts"
	"github.com/jackzampolin/fable/internal/prompts/imageprompts"
	"github.com/jackzampolin/fable/internal/prompts/outline"
	"github.com/jackzampolin/fable/internal/prompts/storytext"
	"github.com/jackzampolin/fable/internal/rules"
)

var (
	buildServerURL string
	buildProvider  string
	buildModels    []string
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Run the book builder stages",
	Long: `Build commands drive a book through the generation pipeline, one
stage at a time. Text stages call the server's LLM proxy; the images
stage submits a job to the image engine and polls until it finishes.

The typical sequence:
  fable build concepts <book-id>
  fable build select <book-id> <concept-index>
  fable build characters <book-id>
  fable build outline <book-id>
  fable build text <book-id>
  fable build prompts <book-id>
  fable build images <book-id>
  fable api books export <book-id>`,
}

func buildClient() *api.Client {
	return api.NewClient(buildServerURL)
}

func buildRunner() (*builder.Runner, *config.Config, error) {
	mgr, err := config.NewManager(cfgFile)
	if err != nil {
		return nil, nil, err
	}
	conf := mgr.Get()

	resolver := prompts.NewResolver(nil)
	concepts.RegisterPrompts(resolver)
	characters.RegisterPrompts(resolver)
	outline.RegisterPrompts(resolver)
	storytext.RegisterPrompts(resolver)
	imageprompts.RegisterPrompts(resolver)
	resolver.SetOverrides(conf.PromptOverrides)

	runner, err := builder.NewRunner(builder.RunnerConfig{
		LLM:            &builder.RemoteLLM{Client: buildClient(), Provider: buildProvider},
		Resolver:       resolver,
		Rules:          rules.FromConfig(conf.Rules),
		Tracker:        builder.NewTracker(),
		TextBatchSize:  conf.Defaults.TextBatchSize,
		OutlineBatches: conf.Defaults.OutlineBatches,
	})
	if err != nil {
		return nil, nil, err
	}
	return runner, conf, nil
}

func loadBook(ctx context.Context, id string) (*book.Book, error) {
	var b book.Book
	if err := buildClient().Get(ctx, "/api/books/"+id, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

func saveBook(ctx context.Context, b *book.Book) error {
	var saved book.Book
	return buildClient().Put(ctx, "/api/books/"+b.ID, b, &saved)
}

// runStage loads the book, applies fn, and saves the result.
func runStage(ctx context.Context, id string, fn func(*book.Book) error) error {
	b, err := loadBook(ctx, id)
	if err != nil {
		return err
	}
	if err := fn(b); err != nil {
		return err
	}
	return saveBook(ctx, b)
}

var buildConceptsCmd = &cobra.Command{
	Use:   "concepts <book-id>",
	Short: "Generate story concepts from the brief",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		runner, _, err := buildRunner()
		if err != nil {
			return err
		}
		return runStage(cmd.Context(), args[0], func(b *book.Book) error {
			if err := runner.GenerateConcepts(cmd.Context(), b); err != nil {
				return err
			}
			for i, c := range b.Concepts {
				fmt.Printf("%d: %s: %s\n", i, c.Title, c.Logline)
			}
			return nil
		})
	},
}

var buildSelectCmd = &cobra.Command{
	Use:   "select <book-id> <concept-index>",
	Short: "Select one of the generated concepts",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		idx, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid concept index %q", args[1])
		}
		runner, _, err := buildRunner()
		if err != nil {
			return err
		}
		return runStage(cmd.Context(), args[0], func(b *book.Book) error {
			if err := runner.SelectConcept(b, idx); err != nil {
				return err
			}
			fmt.Printf("selected: %s\n", b.Concept.Title)
			return nil
		})
	},
}

var buildCharactersCmd = &cobra.Command{
	Use:   "characters <book-id>",
	Short: "Generate the recurring cast",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		runner, _, err := buildRunner()
		if err != nil {
			return err
		}
		return runStage(cmd.Context(), args[0], func(b *book.Book) error {
			if err := runner.GenerateCharacters(cmd.Context(), b); err != nil {
				return err
			}
			for _, c := range b.Characters {
				fmt.Printf("%s (%s)\n", c.Name, c.Role)
			}
			return nil
		})
	},
}

var buildOutlineCmd = &cobra.Command{
	Use:   "outline <book-id>",
	Short: "Generate the per-page story outline",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		runner, _, err := buildRunner()
		if err != nil {
			return err
		}
		return runStage(cmd.Context(), args[0], func(b *book.Book) error {
			return runner.GenerateOutline(cmd.Context(), b)
		})
	},
}

var buildTextCmd = &cobra.Command{
	Use:   "text <book-id>",
	Short: "Write the story text for every outlined page",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		runner, _, err := buildRunner()
		if err != nil {
			return err
		}
		return runStage(cmd.Context(), args[0], func(b *book.Book) error {
			violations, err := runner.GenerateText(cmd.Context(), b)
			if err != nil {
				return err
			}
			for _, v := range violations {
				fmt.Printf("warning: page %d: %s (%q)\n", v.PageIndex, v.Rule, v.Word)
			}
			return nil
		})
	},
}

var buildPromptsCmd = &cobra.Command{
	Use:   "prompts <book-id>",
	Short: "Write an illustration prompt for every page",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		runner, _, err := buildRunner()
		if err != nil {
			return err
		}
		return runStage(cmd.Context(), args[0], func(b *book.Book) error {
			return runner.GenerateImagePrompts(cmd.Context(), b)
		})
	},
}

var buildImagesCmd = &cobra.Command{
	Use:   "images <book-id>",
	Short: "Generate illustrations and wait for results",
	Long: `Submit every page's illustration prompt to the image engine, then
poll the job until it finishes and merge the delivered images into the
book. Ctrl+C stops watching but does not cancel generation server-side;
re-run this command (or check the job with "fable api images status")
to pick results up later.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		_, conf, err := buildRunner()
		if err != nil {
			return err
		}
		b, err := loadBook(ctx, args[0])
		if err != nil {
			return err
		}

		var pages []imagejob.PageSpec
		aspect := b.AspectRatio
		if aspect == "" {
			aspect = conf.Defaults.AspectRatio
		}
		for i := range b.Pages {
			if b.Pages[i].ImagePrompt != "" {
				pages = append(pages, imagejob.PageSpec{
					Index:       b.Pages[i].Index,
					Prompt:      b.Pages[i].ImagePrompt,
					AspectRatio: aspect,
				})
			}
		}
		if len(pages) == 0 {
			return fmt.Errorf("no image prompts; run \"fable build prompts\" first")
		}

		models := buildModels
		if len(models) == 0 {
			models = b.ImageModels
		}

		var submitted imagejob.SubmitResult
		err = buildClient().Post(ctx, "/api/images/submit", map[string]any{
			"pages":  pages,
			"models": models,
		}, &submitted)
		if err != nil {
			return err
		}
		fmt.Printf("job %s: %d pages\n", submitted.JobID, submitted.TotalPages)

		poller, err := builder.NewPoller(builder.PollerConfig{
			Fetcher:  &builder.APIStatusFetcher{Client: buildClient()},
			Interval: time.Duration(conf.Defaults.PollIntervalSeconds) * time.Second,
			Timeout:  time.Duration(conf.Defaults.PollTimeoutSeconds) * time.Second,
			OnUpdate: func(s builder.Snapshot) {
				if s.State == builder.StatePolling && s.Total > 0 {
					fmt.Printf("  %d/%d pages\n", s.Completed, s.Total)
				}
			},
		})
		if err != nil {
			return err
		}
		if err := poller.Start(submitted.JobID); err != nil {
			return err
		}
		go func() {
			<-ctx.Done()
			poller.Stop()
		}()
		poller.Wait()

		snap := poller.Snapshot()
		switch snap.State {
		case builder.StateDone:
			poller.ApplyTo(b)
			b.Stage = book.StageImages
			if err := saveBook(ctx, b); err != nil {
				return err
			}
			fmt.Println("images merged")
			return nil
		case builder.StateError:
			poller.ApplyTo(b)
			if err := saveBook(ctx, b); err != nil {
				return err
			}
			return fmt.Errorf("image job failed: %s", snap.Message)
		default:
			// Stopped by the user; keep whatever arrived.
			poller.ApplyTo(b)
			return saveBook(ctx, b)
		}
	},
}

func init() {
	buildCmd.PersistentFlags().StringVar(
		&buildServerURL, "server", "http://localhost:8080", "Server URL",
	)
	buildCmd.PersistentFlags().StringVar(
		&buildProvider, "provider", "", "LLM provider (default: server's configured default)",
	)
	buildImagesCmd.Flags().StringSliceVar(
		&buildModels, "models", nil, "image models (default: the book's selected models, else server config)",
	)

	buildCmd.AddCommand(buildConceptsCmd)
	buildCmd.AddCommand(buildSelectCmd)
	buildCmd.AddCommand(buildCharactersCmd)
	buildCmd.AddCommand(buildOutlineCmd)
	buildCmd.AddCommand(buildTextCmd)
	buildCmd.AddCommand(buildPromptsCmd)
	buildCmd.AddCommand(buildImagesCmd)
	rootCmd.AddCommand(buildCmd)
}
