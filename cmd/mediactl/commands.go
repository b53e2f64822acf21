package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"coursemedia/internal/adapter/repo"
	"coursemedia/internal/domain"
	"coursemedia/internal/infra"
	"coursemedia/internal/infra/credentials"
	"coursemedia/internal/ingest"
)

const playbackConcurrency = 4

var videoTypes = map[string]string{
	".mp4":  "video/mp4",
	".m4v":  "video/x-m4v",
	".mov":  "video/quicktime",
	".webm": "video/webm",
	".mkv":  "video/x-matroska",
}

func newMigrateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pool, err := ctx.ensurePool(cmd.Context())
			if err != nil {
				return err
			}
			if err := infra.RunMigrations(cmd.Context(), pool, ctx.logger); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}
}

func newIngestCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "ingest <course-id> <file>",
		Short: "Upload a local video and attach it to a course",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			courseID, err := parseCourseID(args[0])
			if err != nil {
				return err
			}
			payload, closeFn, err := openPayload(args[1])
			if err != nil {
				return err
			}
			defer closeFn()

			components, err := ctx.components(cmd.Context())
			if err != nil {
				return err
			}
			res, err := components.Pipeline.Ingest(cmd.Context(), courseID, payload)
			components.Lifecycle.Wait()
			if err != nil {
				return fmt.Errorf("ingest course %d: %w", courseID, err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Course", "Session", "Media Asset", "Bytes"},
				[][]string{{strconv.FormatInt(res.CourseID, 10), res.SessionID, res.MediaAssetID, strconv.FormatInt(payload.Size, 10)}},
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight},
			))
			return nil
		},
	}
}

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status <session-id>",
		Short: "Check an upload session once",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			components, err := ctx.components(cmd.Context())
			if err != nil {
				return err
			}
			progress, err := components.Poller.Check(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Session", "Status", "Asset", "Playback"},
				[][]string{{args[0], string(progress.Status), dash(progress.AssetID), dash(progress.PlaybackID)}},
				nil,
			))
			return nil
		},
	}
}

func newPlaybackCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "playback <course-id>...",
		Short: "Resolve live playback state for courses",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids := make([]int64, 0, len(args))
			for _, arg := range args {
				id, err := parseCourseID(arg)
				if err != nil {
					return err
				}
				ids = append(ids, id)
			}
			runner, err := ctx.runner(cmd.Context())
			if err != nil {
				return err
			}
			components, err := ctx.components(cmd.Context())
			if err != nil {
				return err
			}
			rows, err := resolvePlayback(cmd.Context(), repo.NewCourseRepository(runner), components.Resolver, ids)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Course", "Status", "Asset", "Playback"},
				rows,
				[]columnAlignment{alignRight},
			))
			return nil
		},
	}
}

func newCredentialsCommand(ctx *commandContext) *cobra.Command {
	credsCmd := &cobra.Command{
		Use:   "credentials",
		Short: "Manage video service credentials",
	}

	var tokenID, tokenSecret string
	setCmd := &cobra.Command{
		Use:   "set",
		Short: "Store the video service token pair",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(tokenID) == "" {
				tokenID = os.Getenv("MUX_TOKEN_ID")
			}
			if strings.TrimSpace(tokenSecret) == "" {
				tokenSecret = os.Getenv("MUX_TOKEN_SECRET")
			}
			runner, err := ctx.runner(cmd.Context())
			if err != nil {
				return err
			}
			store := credentials.NewStore(runner)
			if err := store.SetMuxToken(cmd.Context(), credentials.MuxToken{ID: tokenID, Secret: tokenSecret}); err != nil {
				return fmt.Errorf("store credentials: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "credentials stored")
			return nil
		},
	}
	setCmd.Flags().StringVar(&tokenID, "token-id", "", "Token id (defaults to MUX_TOKEN_ID)")
	setCmd.Flags().StringVar(&tokenSecret, "token-secret", "", "Token secret (defaults to MUX_TOKEN_SECRET)")

	credsCmd.AddCommand(setCmd)
	return credsCmd
}

type courseGetter interface {
	GetByID(ctx context.Context, id int64) (*domain.Course, error)
}

type playbackResolver interface {
	ResolvePlayback(ctx context.Context, mediaAssetID string) (domain.AssetRef, error)
}

// resolvePlayback looks up every course concurrently. Per-course failures
// become table rows; only context cancellation aborts the run.
func resolvePlayback(ctx context.Context, courses courseGetter, resolver playbackResolver, ids []int64) ([][]string, error) {
	rows := make([][]string, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(playbackConcurrency)

	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			row := []string{strconv.FormatInt(id, 10), "", "-", "-"}
			defer func() { rows[i] = row }()

			course, err := courses.GetByID(gctx, id)
			if err != nil {
				row[1] = describe(err)
				return ctxErr(gctx, err)
			}
			if !course.HasMedia() {
				row[1] = "no media"
				return nil
			}
			ref, err := resolver.ResolvePlayback(gctx, *course.MediaAssetID)
			if err != nil {
				row[1] = describe(err)
				row[2] = dash(ref.AssetID)
				return ctxErr(gctx, err)
			}
			row[1], row[2], row[3] = string(ref.Status), ref.AssetID, ref.PlaybackID
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return rows, nil
}

func ctxErr(ctx context.Context, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return ctx.Err()
}

func describe(err error) string {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return "course not found"
	case errors.Is(err, domain.ErrAssetNotFound):
		return "asset not found"
	case errors.Is(err, domain.ErrAssetNotReady):
		return "processing"
	case errors.Is(err, domain.ErrUpstreamError):
		return "failed"
	default:
		return "error: " + err.Error()
	}
}

func parseCourseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid course id %q", raw)
	}
	return id, nil
}

// openPayload opens path and infers its content type from the extension,
// falling back to the system mime table and then to sniffing the first bytes.
func openPayload(path string) (ingest.Payload, func(), error) {
	f, err := os.Open(path)
	if err != nil {
		return ingest.Payload{}, nil, err
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return ingest.Payload{}, nil, err
	}
	if info.IsDir() {
		_ = f.Close()
		return ingest.Payload{}, nil, fmt.Errorf("%s is a directory", path)
	}

	ext := strings.ToLower(filepath.Ext(path))
	contentType, ok := videoTypes[ext]
	if !ok {
		contentType = mime.TypeByExtension(ext)
	}
	if contentType == "" {
		head := make([]byte, 512)
		n, _ := io.ReadFull(f, head)
		contentType = http.DetectContentType(head[:n])
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			_ = f.Close()
			return ingest.Payload{}, nil, err
		}
	}

	closeFn := func() { _ = f.Close() }
	return ingest.Payload{Body: f, ContentType: contentType, Size: info.Size()}, closeFn, nil
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
