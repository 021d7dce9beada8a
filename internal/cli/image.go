package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/truthcheck/internal/llm"
)

var imageCmd = &cobra.Command{
	Use:   "image <file>",
	Short: "Check an image shared as news",
	Long: `Image asks a vision-capable model to describe the image and checks the
description like an article. Image integrity analysis is not performed.

Example:
  truthcheck image print.png --md report.md`,
	Args: cobra.ExactArgs(1),
	RunE: runImage,
}

func init() {
	rootCmd.AddCommand(imageCmd)

	imageCmd.Flags().StringVar(&outJSON, "json", "", "output JSON path (optional)")
	imageCmd.Flags().StringVar(&outMD, "md", "", "output Markdown path (optional)")
	imageCmd.Flags().DurationVar(&timeout, "timeout", 3*time.Minute, "overall check timeout")
}

func runImage(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read image: %w", err)
	}
	mimeType := http.DetectContentType(data)
	if !strings.HasPrefix(mimeType, "image/") {
		return fmt.Errorf("%s is not an image (%s)", args[0], mimeType)
	}

	a, err := newApp(appOptions{})
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	result, err := a.service.CheckImage(ctx, llm.Image{MIMEType: mimeType, Data: data}, printProgress)
	if err != nil {
		fmt.Fprintf(os.Stderr, "✗ %s\n", failureMessage(err))
		return fmt.Errorf("image check failed: %w", err)
	}
	return renderOutputs(a.renderer, result.Report(), outJSON, outMD)
}
