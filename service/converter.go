package service

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// ConvertOptions are the decode options the layout converter understands.
// They are translated from the caller's raw option map; options the converter
// cannot honor are accepted and ignored.
type ConvertOptions struct {
	Format         string   `json:"format,omitempty"`
	ExtractTables  bool     `json:"extract_tables,omitempty"`
	ExtractFigures bool     `json:"extract_figures,omitempty"`
	OCREnabled     bool     `json:"ocr_enabled,omitempty"`
	OCRLanguages   []string `json:"ocr_languages,omitempty"`
	PreserveLayout bool     `json:"preserve_layout,omitempty"`
}

// DocumentConverter decodes a file on disk into a Document handle. This is
// the external decode capability the layout backend consumes.
type DocumentConverter interface {
	Convert(ctx context.Context, path string, opts ConvertOptions) (Document, error)
}

var pdfinfoPagesRe = regexp.MustCompile(`Pages:\s+(\d+)`)

// popplerConverter decodes PDFs with the poppler command line tools, falling
// back to tesseract OCR for pages where pdftotext finds nothing.
type popplerConverter struct{}

// checkPopplerTools reports whether the binaries the converter shells out to
// are installed.
func checkPopplerTools() error {
	for _, tool := range []string{"pdfinfo", "pdftotext"} {
		if _, err := exec.LookPath(tool); err != nil {
			return fmt.Errorf("%s not found in PATH", tool)
		}
	}
	return nil
}

func (c *popplerConverter) Convert(ctx context.Context, path string, opts ConvertOptions) (Document, error) {
	totalPages, err := c.numPages(ctx, path)
	if err != nil {
		return nil, err
	}
	log.Println("Total pages: ", totalPages)

	doc := &LayoutDocument{
		Source: filepath.Base(path),
		Pages:  make([]PageContent, 0, totalPages),
	}
	for pageNum := 1; pageNum <= totalPages; pageNum++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		text, err := c.extractPageText(ctx, path, pageNum, opts)
		if err != nil {
			// Keep the page slot so page numbering stays meaningful.
			log.Printf("Warning: failed to extract text from page %d: %v", pageNum, err)
			text = ""
		}
		doc.Pages = append(doc.Pages, PageContent{
			Number: pageNum,
			Text:   cleanText(text),
		})
	}
	return doc, nil
}

// numPages uses pdfinfo to get the total number of pages in a PDF file.
func (c *popplerConverter) numPages(ctx context.Context, path string) (int, error) {
	cmd := exec.CommandContext(ctx, "pdfinfo", path)
	var out bytes.Buffer
	cmd.Stdout = &out

	if err := cmd.Run(); err != nil {
		return 0, fmt.Errorf("error running pdfinfo: %w", err)
	}

	scanner := bufio.NewScanner(&out)
	for scanner.Scan() {
		if matches := pdfinfoPagesRe.FindStringSubmatch(scanner.Text()); len(matches) == 2 {
			return strconv.Atoi(matches[1])
		}
	}
	return 0, fmt.Errorf("unable to determine page count from pdfinfo")
}

// extractPageText tries pdftotext first and falls back to OCR when the page
// has no text layer and OCR is enabled.
func (c *popplerConverter) extractPageText(ctx context.Context, path string, pageNum int, opts ConvertOptions) (string, error) {
	text, err := c.extractWithPdftotext(ctx, path, pageNum, opts.PreserveLayout)
	if err == nil && text != "" {
		return text, nil
	}
	if !opts.OCREnabled {
		if err != nil {
			return "", err
		}
		return "", nil
	}
	return c.extractWithTesseract(ctx, path, pageNum, opts.OCRLanguages)
}

func (c *popplerConverter) extractWithPdftotext(ctx context.Context, path string, pageNum int, preserveLayout bool) (string, error) {
	args := []string{
		"-f", strconv.Itoa(pageNum),
		"-l", strconv.Itoa(pageNum),
		"-enc", "UTF-8", "-nopgbrk",
	}
	if preserveLayout {
		args = append(args, "-layout")
	}
	args = append(args, path, "-")

	cmd := exec.CommandContext(ctx, "pdftotext", args...)
	var out bytes.Buffer
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("pdftotext failed for page %d: %w", pageNum, err)
	}
	return strings.TrimSpace(out.String()), nil
}

// extractWithTesseract renders the page to an image with pdftoppm and runs
// tesseract over it.
func (c *popplerConverter) extractWithTesseract(ctx context.Context, path string, pageNum int, languages []string) (string, error) {
	log.Println("Try extracting with tesseract, page", pageNum)
	tempDir, err := os.MkdirTemp("", "docproc-ocr-")
	if err != nil {
		return "", fmt.Errorf("failed to create temp directory: %w", err)
	}
	defer os.RemoveAll(tempDir)

	convertCmd := exec.CommandContext(ctx, "pdftoppm",
		"-f", strconv.Itoa(pageNum), "-l", strconv.Itoa(pageNum),
		"-png", path, filepath.Join(tempDir, "page"))
	if err := convertCmd.Run(); err != nil {
		return "", fmt.Errorf("error converting page %d to image: %w", pageNum, err)
	}

	images, err := filepath.Glob(filepath.Join(tempDir, "page-*.png"))
	if err != nil || len(images) == 0 {
		return "", fmt.Errorf("failed to read rendered page image: %w", err)
	}

	if len(languages) == 0 {
		languages = []string{"eng"}
	}
	ocrCmd := exec.CommandContext(ctx, "tesseract",
		images[0],
		"stdout",
		"-l", strings.Join(languages, "+"),
		"--oem", "3",
		"--psm", "3",
	)
	var out bytes.Buffer
	ocrCmd.Stdout = &out
	if err := ocrCmd.Run(); err != nil {
		return "", fmt.Errorf("failed to run tesseract: %w", err)
	}
	text := strings.TrimSpace(out.String())
	if text == "" {
		return "", fmt.Errorf("got nothing at page %d", pageNum)
	}
	return text, nil
}

var textReplacements = map[string]string{
	"\u0000": "",   // Null character
	"\ufffd": "",   // Unicode replacement character
	"\u001b": "",   // Escape character
	"\r":     "",   // Carriage return
	"\f":     "\n", // Form feed to newline
	"  ":     " ",  // Multiple spaces to single space
}

func cleanText(text string) string {
	cleaned := text
	for old, replacement := range textReplacements {
		cleaned = strings.ReplaceAll(cleaned, old, replacement)
	}
	return strings.TrimSpace(cleaned)
}
