package typst

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/netspire/billing/internal/config"
	ierr "github.com/netspire/billing/internal/errors"
	"github.com/netspire/billing/internal/logger"
)

// Compiler shells out to the typst binary to render templates to PDF
type Compiler interface {
	Compile(opts CompileOpts) (string, error)
	CompileToBytes(opts CompileOpts) ([]byte, error)
	CompileTemplate(templateName string, data []byte, opts ...CompileOptsBuilder) ([]byte, error)
	CleanupGeneratedFiles(files ...string)
}

type compiler struct {
	logger      *logger.Logger
	binaryPath  string
	fontDir     string
	templateDir string
	outputDir   string
}

// CompileOpts contains options for a single compile invocation
type CompileOpts struct {
	InputFile  string
	OutputFile string
	FontDirs   []string
	ExtraArgs  []string
}

type CompileOptsBuilder func(c *CompileOpts)

func WithOutputFile(outputFile string) CompileOptsBuilder {
	return func(c *CompileOpts) {
		c.OutputFile = outputFile
	}
}

func WithFontDirs(fontDirs ...string) CompileOptsBuilder {
	return func(c *CompileOpts) {
		c.FontDirs = fontDirs
	}
}

// NewCompiler creates a compiler from the PDF configuration
func NewCompiler(cfg *config.Configuration, logger *logger.Logger) Compiler {
	binaryPath := cfg.PDF.BinaryPath
	if binaryPath == "" {
		binaryPath = "typst"
	}
	templateDir := cfg.PDF.TemplateDir
	if templateDir == "" {
		templateDir = "internal/typst/templates"
	}
	outputDir := cfg.PDF.OutputDir
	if outputDir == "" {
		outputDir = os.TempDir()
	}

	return &compiler{
		logger:      logger,
		binaryPath:  binaryPath,
		fontDir:     cfg.PDF.FontDir,
		templateDir: templateDir,
		outputDir:   outputDir,
	}
}

// Compile renders a typst document to a PDF file and returns its path
func (c *compiler) Compile(opts CompileOpts) (string, error) {
	outputFile := opts.OutputFile
	if outputFile == "" {
		outputFile = fmt.Sprintf("typst-%d.pdf", time.Now().UnixMilli())
	}
	outputPath := filepath.Join(c.outputDir, outputFile)

	var fontDirs []string
	if c.fontDir != "" {
		fontDirs = append(fontDirs, c.fontDir)
	}
	fontDirs = append(fontDirs, opts.FontDirs...)

	args := []string{"compile", "--root", "/"}
	for _, dir := range fontDirs {
		args = append(args, "--font-path", dir)
	}
	args = append(args, opts.ExtraArgs...)
	args = append(args, opts.InputFile, outputPath)

	cmd := exec.Command(c.binaryPath, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", ierr.WithError(err).
			WithMessage("typst compilation failed").
			WithHint("Failed to render document").
			WithReportableDetails(map[string]any{
				"stderr": stderr.String(),
			}).
			Mark(ierr.ErrSystem)
	}

	return outputPath, nil
}

// CompileToBytes renders a typst document and returns the PDF content
func (c *compiler) CompileToBytes(opts CompileOpts) ([]byte, error) {
	pdfPath, err := c.Compile(opts)
	if err != nil {
		return nil, err
	}

	return os.ReadFile(pdfPath)
}

// CompileTemplate renders a named template from the template directory with
// the given JSON payload. The template reads it back with
//
//	#let data = json(sys.inputs.path)
func (c *compiler) CompileTemplate(
	templateName string,
	data []byte,
	opts ...CompileOptsBuilder,
) ([]byte, error) {
	templatePath := filepath.Join(c.templateDir, templateName)
	if _, err := os.Stat(templatePath); os.IsNotExist(err) {
		return nil, ierr.WithError(err).
			WithMessagef("template not found: %s", templatePath).
			WithHint("Failed to render document").
			Mark(ierr.ErrSystem)
	}

	jsonFile, err := os.Create(filepath.Join(c.outputDir, fmt.Sprintf("typst-%d.json", time.Now().UnixMilli())))
	if err != nil {
		return nil, ierr.WithError(err).
			WithMessage("failed to create temporary json file").
			WithHint("Failed to render document").
			Mark(ierr.ErrSystem)
	}

	if _, err := jsonFile.Write(data); err != nil {
		jsonFile.Close()
		return nil, ierr.WithError(err).
			WithMessage("failed to write template data").
			WithHint("Failed to render document").
			Mark(ierr.ErrSystem)
	}
	jsonFile.Close()
	defer os.Remove(jsonFile.Name())

	compileOpts := CompileOpts{
		InputFile: templatePath,
		ExtraArgs: []string{"--input", fmt.Sprintf("path=%s", jsonFile.Name())},
	}
	for _, opt := range opts {
		opt(&compileOpts)
	}

	return c.CompileToBytes(compileOpts)
}

// CleanupGeneratedFiles removes files created during compilation
func (c *compiler) CleanupGeneratedFiles(files ...string) {
	for _, file := range files {
		if file != "" {
			if err := os.Remove(file); err != nil && !os.IsNotExist(err) {
				c.logger.Warnw("failed to remove generated file", "file", file, "error", err)
			}
		}
	}
}
