package workbook

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/mcpforge/adapters/internal/adapter"
	"github.com/mcpforge/adapters/internal/logging"
)

type Service struct {
	mgr *Manager
	log logging.Logger
}

func NewService(store Store, log logging.Logger) *Service {
	return &Service{mgr: NewManager(store), log: log.WithName("workbook")}
}

func requireNames(req mcp.CallToolRequest, keys ...string) ([]string, *mcp.CallToolResult) {
	values := make([]string, 0, len(keys))
	for _, key := range keys {
		value, err := req.RequireString(key)
		if err != nil {
			return nil, adapter.Errorf("%s parameter is required", key)
		}
		values = append(values, value)
	}
	return values, nil
}

func (s *Service) handleCreate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return adapter.Errorf("name parameter is required"), nil
	}
	if err := s.mgr.Create(name); err != nil {
		return adapter.Errorf("%v", err), nil
	}
	s.log.Info("created workbook", "name", name)
	return adapter.TextResult(fmt.Sprintf("created workbook %q", name)), nil
}

func (s *Service) handleLoad(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, errRes := requireNames(req, "name", "path")
	if errRes != nil {
		return errRes, nil
	}
	if err := s.mgr.Load(args[0], args[1]); err != nil {
		return adapter.Errorf("%v", err), nil
	}
	return adapter.TextResult(fmt.Sprintf("loaded workbook %q from %s", args[0], args[1])), nil
}

func (s *Service) handleSave(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, errRes := requireNames(req, "name", "path")
	if errRes != nil {
		return errRes, nil
	}
	if err := s.mgr.Save(args[0], args[1]); err != nil {
		return adapter.Errorf("%v", err), nil
	}
	s.log.Info("saved workbook", "name", args[0], "path", args[1])
	return adapter.TextResult(fmt.Sprintf("saved workbook %q to %s", args[0], args[1])), nil
}

func (s *Service) handleClose(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return adapter.Errorf("name parameter is required"), nil
	}
	if err := s.mgr.Close(name); err != nil {
		return adapter.Errorf("%v", err), nil
	}
	return adapter.TextResult(fmt.Sprintf("closed workbook %q", name)), nil
}

func (s *Service) handleList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	names := s.mgr.List()
	return adapter.TextResult(struct {
		Workbooks []string `json:"workbooks"`
		Total     int      `json:"total"`
	}{names, len(names)}), nil
}

func (s *Service) handleAddSheet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, errRes := requireNames(req, "name", "sheet")
	if errRes != nil {
		return errRes, nil
	}
	if err := s.mgr.AddSheet(args[0], args[1]); err != nil {
		return adapter.Errorf("%v", err), nil
	}
	return adapter.TextResult(fmt.Sprintf("added sheet %q to workbook %q", args[1], args[0])), nil
}

func (s *Service) handleListSheets(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return adapter.Errorf("name parameter is required"), nil
	}
	sheets, err := s.mgr.Sheets(name)
	if err != nil {
		return adapter.Errorf("%v", err), nil
	}
	return adapter.TextResult(struct {
		Workbook string   `json:"workbook"`
		Sheets   []string `json:"sheets"`
	}{name, sheets}), nil
}

func (s *Service) handleSetCell(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, errRes := requireNames(req, "name", "sheet", "cell")
	if errRes != nil {
		return errRes, nil
	}
	value, ok := req.GetArguments()["value"]
	if !ok {
		return adapter.Errorf("value parameter is required"), nil
	}
	if err := s.mgr.SetCell(args[0], args[1], args[2], value); err != nil {
		return adapter.Errorf("%v", err), nil
	}
	return adapter.TextResult(fmt.Sprintf("set %s!%s", args[1], args[2])), nil
}

func (s *Service) handleGetCell(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, errRes := requireNames(req, "name", "sheet", "cell")
	if errRes != nil {
		return errRes, nil
	}
	value, err := s.mgr.GetCell(args[0], args[1], args[2])
	if err != nil {
		return adapter.Errorf("%v", err), nil
	}
	return adapter.TextResult(struct {
		Cell  string `json:"cell"`
		Value string `json:"value"`
	}{args[1] + "!" + args[2], value}), nil
}

func (s *Service) handleGetRange(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, errRes := requireNames(req, "name", "sheet", "range")
	if errRes != nil {
		return errRes, nil
	}
	rows, err := s.mgr.GetRange(args[0], args[1], args[2])
	if err != nil {
		return adapter.Errorf("%v", err), nil
	}
	return adapter.TextResult(struct {
		Range string     `json:"range"`
		Rows  [][]string `json:"rows"`
	}{args[1] + "!" + args[2], rows}), nil
}

func (s *Service) handleApplyFormula(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, errRes := requireNames(req, "name", "sheet", "cell", "formula")
	if errRes != nil {
		return errRes, nil
	}
	value, err := s.mgr.ApplyFormula(args[0], args[1], args[2], args[3])
	if err != nil {
		return adapter.Errorf("%v", err), nil
	}
	return adapter.TextResult(struct {
		Cell     string `json:"cell"`
		Formula  string `json:"formula"`
		Computed string `json:"computed"`
	}{args[1] + "!" + args[2], args[3], value}), nil
}

// New builds the workbook adapter.
func New(svc *Service, log logging.Logger) *adapter.Server {
	srv := adapter.New(adapter.Options{
		Name:        "workbook",
		Version:     "1.0.0",
		Description: "In-memory spreadsheet workspace: create or load xlsx workbooks, edit cells, evaluate formulas, save to disk. Workbooks live only for the process lifetime.",
		Logger:      log,
	})

	srv.Handle(mcp.NewTool("create_workbook",
		mcp.WithDescription("Create a new empty workbook held in memory."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Name to register the workbook under")),
	), svc.handleCreate)

	srv.Handle(mcp.NewTool("load_workbook",
		mcp.WithDescription("Load an xlsx file from disk into memory."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Name to register the workbook under")),
		mcp.WithString("path", mcp.Required(), mcp.Description("Path of the xlsx file")),
	), svc.handleLoad)

	srv.Handle(mcp.NewTool("save_workbook",
		mcp.WithDescription("Write a workbook to disk as xlsx. The workbook stays open."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Workbook name")),
		mcp.WithString("path", mcp.Required(), mcp.Description("Destination path")),
	), svc.handleSave)

	srv.Handle(mcp.NewTool("close_workbook",
		mcp.WithDescription("Close a workbook and discard unsaved changes."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Workbook name")),
	), svc.handleClose)

	srv.Handle(mcp.NewTool("list_workbooks",
		mcp.WithDescription("List open workbooks."),
	), svc.handleList)

	srv.Handle(mcp.NewTool("add_sheet",
		mcp.WithDescription("Add a sheet to a workbook."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Workbook name")),
		mcp.WithString("sheet", mcp.Required(), mcp.Description("New sheet name")),
	), svc.handleAddSheet)

	srv.Handle(mcp.NewTool("list_sheets",
		mcp.WithDescription("List sheets in a workbook."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Workbook name")),
	), svc.handleListSheets)

	srv.Handle(mcp.NewTool("set_cell",
		mcp.WithDescription("Write a value to a cell. JSON numbers and booleans keep their type; strings are stored as text."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Workbook name")),
		mcp.WithString("sheet", mcp.Required(), mcp.Description("Sheet name")),
		mcp.WithString("cell", mcp.Required(), mcp.Description("Cell reference, e.g. B2")),
		mcp.WithString("value", mcp.Required(), mcp.Description("Value to store")),
	), svc.handleSetCell)

	srv.Handle(mcp.NewTool("get_cell",
		mcp.WithDescription("Read the computed value of a cell."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Workbook name")),
		mcp.WithString("sheet", mcp.Required(), mcp.Description("Sheet name")),
		mcp.WithString("cell", mcp.Required(), mcp.Description("Cell reference, e.g. B2")),
	), svc.handleGetCell)

	srv.Handle(mcp.NewTool("get_range",
		mcp.WithDescription("Read raw values of a rectangular range as rows."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Workbook name")),
		mcp.WithString("sheet", mcp.Required(), mcp.Description("Sheet name")),
		mcp.WithString("range", mcp.Required(), mcp.Description("Range reference, e.g. A1:C3")),
	), svc.handleGetRange)

	srv.Handle(mcp.NewTool("apply_formula",
		mcp.WithDescription("Store a formula in a cell and return its computed value."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Workbook name")),
		mcp.WithString("sheet", mcp.Required(), mcp.Description("Sheet name")),
		mcp.WithString("cell", mcp.Required(), mcp.Description("Cell reference, e.g. B2")),
		mcp.WithString("formula", mcp.Required(), mcp.Description("Formula without the leading =, e.g. SUM(A1:A5)")),
	), svc.handleApplyFormula)

	return srv
}
