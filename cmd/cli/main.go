package main

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/redis/go-redis/v9"
	"github.com/urfave/cli/v2"

	"github.com/bakry/voice-comments/internal/attach"
	"github.com/bakry/voice-comments/internal/config"
	"github.com/bakry/voice-comments/internal/datalayer"
	"github.com/bakry/voice-comments/internal/plugin"
	"github.com/bakry/voice-comments/internal/reaction"
	"github.com/bakry/voice-comments/internal/repository"
)

func renderRows(rows [][]string) error {
	table := tablewriter.NewWriter(os.Stdout)
	for _, row := range rows {
		if err := table.Append(row); err != nil {
			return fmt.Errorf("failed to append row: %w", err)
		}
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}
	return nil
}

func main() {
	if err := config.LoadEnv(); err != nil {
		log.Fatalf("Failed to load .env file: %v", err)
	}

	pool, err := datalayer.NewPostgresPoolFromEnv()
	if err != nil {
		log.Fatalf("Failed to create postgres pool: %v", err)
	}
	if err := datalayer.MigratePostgres(pool); err != nil {
		log.Fatalf("Failed to migrate postgres: %v", err)
	}

	attachmentRepo := repository.NewPostgresAttachmentRepository(pool)
	commentRepo := repository.NewPostgresCommentRepository(pool)

	app := &cli.App{
		Name:        "voice-comments-cli",
		Description: "A development CLI tool for inspecting voice comments without a browser",
		Commands: []*cli.Command{
			{
				Name:  "attachments",
				Usage: "List the most recent voice attachments",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Value: 20,
						Usage: "Maximum number of attachments to show",
					},
				},
				Action: func(c *cli.Context) error {
					attachments, err := attachmentRepo.List(c.Context, c.Int("limit"))
					if err != nil {
						return cli.Exit("Failed to list attachments: "+err.Error(), 1)
					}
					if len(attachments) == 0 {
						fmt.Println("No attachments found.")
						return nil
					}

					rows := [][]string{{"ID", "Title", "MIME Type", "Size", "URL"}}
					for _, a := range attachments {
						rows = append(rows, []string{
							strconv.FormatInt(a.ID, 10),
							a.Title,
							a.MimeType,
							strconv.FormatInt(a.FileSize, 10),
							a.URL,
						})
					}
					return renderRows(rows)
				},
			},
			{
				Name:  "leaderboard",
				Usage: "Show the top voice commenters",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Value: 10,
						Usage: "Maximum number of commenters to show",
					},
				},
				Action: func(c *cli.Context) error {
					redisConfig, err := config.NewRedisConfigFromEnv()
					if err != nil {
						return cli.Exit("Failed to load redis config: "+err.Error(), 1)
					}
					redisClient := redis.NewClient(&redis.Options{
						Addr:     redisConfig.Addr,
						Password: redisConfig.Password,
					})
					defer redisClient.Close()

					minioStorage, err := datalayer.NewMinioStorageFromEnv()
					if err != nil {
						return cli.Exit("Failed to create minio storage: "+err.Error(), 1)
					}

					attachments := attach.NewService(
						minioStorage,
						attachmentRepo,
						repository.NewPostgresCommentMetaRepository(pool),
					)
					reactions := reaction.NewRedisStore(redisClient)
					voicePlugin := plugin.New(attachments, reactions, commentRepo)

					leaderboard, err := voicePlugin.Leaderboard(c.Context, c.Int("limit"))
					if err != nil {
						return cli.Exit("Failed to build leaderboard: "+err.Error(), 1)
					}
					if len(leaderboard) == 0 {
						fmt.Println("No voice comments found.")
						return nil
					}

					rows := [][]string{{"Author", "Voice Comments", "Likes"}}
					for _, row := range leaderboard {
						rows = append(rows, []string{
							row.Author,
							strconv.FormatInt(row.CommentCount, 10),
							strconv.FormatInt(row.LikeCount, 10),
						})
					}
					return renderRows(rows)
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatalf("Failed to run CLI: %v", err)
	}
}
