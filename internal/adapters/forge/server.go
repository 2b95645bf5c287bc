package forge

import (
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/spf13/afero"

	"github.com/mcpforge/adapters/internal/adapter"
	"github.com/mcpforge/adapters/internal/logging"
	"github.com/mcpforge/adapters/internal/registry"
)

// Options wires the forge service to its filesystem, registry, and
// toolchain.
type Options struct {
	Fs         afero.Fs
	ServersDir string
	Registry   *registry.Registry
	NodeBin    string
	TSXBin     string
	RunTimeout time.Duration
	Logger     logging.Logger
}

// Service carries the forge tools' shared dependencies. Every mutating
// operation re-checks file existence right before acting; there is no
// transactional guarantee across two concurrent forge processes.
type Service struct {
	store      *Store
	reg        *registry.Registry
	installer  *Installer
	runner     Runner
	runTimeout time.Duration
	log        logging.Logger
}

func NewService(opts Options) *Service {
	if opts.RunTimeout <= 0 {
		opts.RunTimeout = DefaultRunTimeout
	}
	return &Service{
		store:      NewStore(opts.Fs, opts.ServersDir),
		reg:        opts.Registry,
		installer:  &Installer{Dir: opts.ServersDir, Log: opts.Logger.WithName("npm")},
		runner:     Runner{NodeBin: opts.NodeBin, TSXBin: opts.TSXBin},
		runTimeout: opts.RunTimeout,
		log:        opts.Logger.WithName("forge"),
	}
}

// New builds the forge adapter: the tools that create, edit, register,
// and trial-run Node MCP adapter sources.
func New(svc *Service, log logging.Logger) *adapter.Server {
	srv := adapter.New(adapter.Options{
		Name:        "forge",
		Version:     "1.0.0",
		Description: "Creates and edits Node MCP adapter sources on disk, keeps the host registration document in sync, resolves npm dependencies, and trial-runs generated adapters.",
		Resources:   true,
		Prompts:     true,
		Logger:      log,
	})

	srv.Handle(mcp.NewTool("create_adapter",
		mcp.WithDescription("Write a new adapter source file under the servers directory. Fails if a file of the same sanitized name exists unless overwrite is set; optionally registers the adapter with the host client."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Adapter name; non-alphanumeric characters map to underscores")),
		mcp.WithString("source", mcp.Required(), mcp.Description("Complete source text written verbatim")),
		mcp.WithBoolean("overwrite", mcp.Description("Replace an existing file of the same name (default: false)")),
		mcp.WithBoolean("register", mcp.Description("Also add a launch entry to the host registration document (default: false)")),
		mcp.WithObject("env", mcp.Description("Environment variables for the registration entry")),
	), svc.handleCreate)

	srv.Handle(mcp.NewTool("update_adapter",
		mcp.WithDescription("Overwrite an existing adapter file's entire content."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Adapter name")),
		mcp.WithString("source", mcp.Required(), mcp.Description("Replacement source text")),
	), svc.handleUpdate)

	srv.Handle(mcp.NewTool("replace_adapter_lines",
		mcp.WithDescription("Replace an inclusive 1-based line range of an adapter file with new content. Out-of-range or inverted bounds are rejected and the file is left untouched."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Adapter name")),
		mcp.WithNumber("startLine", mcp.Required(), mcp.Description("First line to replace (1-based, inclusive)")),
		mcp.WithNumber("endLine", mcp.Required(), mcp.Description("Last line to replace (1-based, inclusive)")),
		mcp.WithString("content", mcp.Required(), mcp.Description("Replacement text spliced over the range")),
	), svc.handleReplaceLines)

	srv.Handle(mcp.NewTool("insert_adapter_lines",
		mcp.WithDescription("Insert new lines immediately after a 1-based line of an adapter file. Line 0 prepends; past end-of-file is rejected."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Adapter name")),
		mcp.WithNumber("afterLine", mcp.Required(), mcp.Description("Line to insert after; 0 prepends")),
		mcp.WithString("content", mcp.Required(), mcp.Description("Text inserted after the line")),
	), svc.handleInsertLines)

	srv.Handle(mcp.NewTool("read_adapter",
		mcp.WithDescription("Read an adapter file's content with line numbers for section editing."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Adapter name")),
	), svc.handleRead)

	srv.Handle(mcp.NewTool("list_adapters",
		mcp.WithDescription("List stored adapter files with sizes and registration status."),
	), svc.handleList)

	srv.Handle(mcp.NewTool("delete_adapter",
		mcp.WithDescription("Delete an adapter file and, by default, its registration entry."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Adapter name")),
		mcp.WithBoolean("unregister", mcp.Description("Also remove the registration entry (default: true)")),
	), svc.handleDelete)

	srv.Handle(mcp.NewTool("scan_adapter_deps",
		mcp.WithDescription("Scan an adapter file's import statements and report the npm packages it needs. Relative paths, Node built-ins, and the MCP SDK are excluded."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Adapter name")),
	), svc.handleScanDeps)

	srv.Handle(mcp.NewTool("install_adapter_deps",
		mcp.WithDescription("Install npm packages into the servers directory, falling back to pnpm when npm fails. Give explicit packages, or an adapter name to install what its imports need."),
		mcp.WithString("name", mcp.Description("Adapter whose scanned imports are installed")),
		mcp.WithArray("packages", mcp.Description("Explicit package names to install"), mcp.WithStringItems()),
		mcp.WithBoolean("dev_types", mcp.Description("Probe for and install @types companion packages (default: true)")),
	), svc.handleInstallDeps)

	srv.Handle(mcp.NewTool("try_adapter",
		mcp.WithDescription("Run an adapter file as a child process for a bounded window and classify the outcome. Output on stderr or a non-zero exit means failure; an adapter still running cleanly at the deadline passes."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Adapter name")),
		mcp.WithNumber("timeoutSeconds", mcp.Description("Run window in seconds (default 5, max 60)")),
		mcp.WithObject("env", mcp.Description("Extra environment variables for the child process")),
	), svc.handleTryRun)

	srv.Handle(mcp.NewTool("register_adapter",
		mcp.WithDescription("Add or update the host registration entry launching an existing adapter file."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Adapter name")),
		mcp.WithObject("env", mcp.Description("Environment variables for the launch entry")),
	), svc.handleRegister)

	srv.Handle(mcp.NewTool("unregister_adapter",
		mcp.WithDescription("Remove an adapter's entry from the host registration document."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Adapter name")),
	), svc.handleUnregister)

	srv.Handle(mcp.NewTool("export_registration",
		mcp.WithDescription("Render the registration document for inspection."),
		mcp.WithString("format", mcp.Description("Output format"), mcp.Enum("json", "yaml"), mcp.DefaultString("json")),
	), svc.handleExportRegistration)

	srv.HandleResource(mcp.NewResource(
		"adapter://catalog",
		"Adapter catalog",
		mcp.WithResourceDescription("Stored adapter files with sizes and registration status"),
		mcp.WithMIMEType("application/json"),
	), svc.handleCatalogResource)

	srv.HandleResourceTemplate(mcp.NewResourceTemplate(
		"adapter://{name}/source",
		"Adapter source",
		mcp.WithTemplateDescription("Source text of one stored adapter"),
		mcp.WithTemplateMIMEType("text/javascript"),
	), svc.handleSourceResource)

	srv.HandlePrompt(mcp.NewPrompt("scaffold_adapter",
		mcp.WithPromptDescription("Guidance for writing a new Node MCP adapter source file"),
		mcp.WithArgument("purpose", mcp.ArgumentDescription("What the adapter should do"), mcp.RequiredArgument()),
		mcp.WithArgument("packages", mcp.ArgumentDescription("npm packages the adapter should build on")),
	), svc.handleScaffoldPrompt)

	return srv
}
