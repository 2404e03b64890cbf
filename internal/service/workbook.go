package service

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"deck_srv/internal/statusreport"

	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
)

// WorkbookGenerator строит табличную копию данных презентации
type WorkbookGenerator interface {
	Generate(ctx context.Context, req statusreport.ReportRequest) (io.Reader, error)
	GetMimeType() string
	GetFileExtension() string
}

type sheet struct {
	name   string
	header []string
	widths []float64
	rows   [][]interface{}
}

// ExcelWorkbookGenerator генератор xlsx с листом на каждый список
type ExcelWorkbookGenerator struct {
	brand  statusreport.Brand
	logger *logrus.Logger
}

// NewExcelWorkbookGenerator создает новый генератор Excel
func NewExcelWorkbookGenerator(brand statusreport.Brand, logger *logrus.Logger) WorkbookGenerator {
	return &ExcelWorkbookGenerator{brand: brand, logger: logger}
}

func sheets(req statusreport.ReportRequest) []sheet {
	req = req.Capped()

	acc := sheet{name: "Accomplishments", header: []string{"#", "Accomplishment"}, widths: []float64{6, 80}}
	for i, a := range req.Accomplishments {
		acc.rows = append(acc.rows, []interface{}{i + 1, a})
	}

	pri := sheet{name: "Priorities", header: []string{"#", "Description", "Owner"}, widths: []float64{6, 60, 24}}
	for i, p := range req.Priorities {
		pri.rows = append(pri.rows, []interface{}{i + 1, p.Description, p.Owner})
	}

	risks := sheet{name: "Risks", header: []string{"#", "Action Item", "Owner", "Target Date", "Status"}, widths: []float64{6, 60, 24, 16, 20}}
	for i, r := range req.Risks {
		risks.rows = append(risks.rows, []interface{}{i + 1, r.Description, r.Owner, r.TargetDate, r.Status})
	}

	ms := sheet{name: "Milestones", header: []string{"#", "Milestone Description", "Target Date", "Status"}, widths: []float64{6, 70, 16, 20}}
	for i, m := range req.Milestones {
		ms.rows = append(ms.rows, []interface{}{i + 1, m.Description, m.TargetDate, m.Status})
	}

	up := sheet{name: "Upcoming", header: []string{"Milestone", "Target Date", "Owner"}, widths: []float64{70, 16, 24}}
	for _, u := range req.UpcomingMilestones {
		up.rows = append(up.rows, []interface{}{u.Description, u.TargetDate, u.Owner})
	}

	return []sheet{acc, pri, risks, ms, up}
}

// Generate генерирует xlsx в памяти
func (g *ExcelWorkbookGenerator) Generate(ctx context.Context, req statusreport.ReportRequest) (io.Reader, error) {
	logger := g.logger.WithField("project", req.ProjectName)
	logger.Debug("Генерация Excel книги")

	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold:  true,
			Size:  11,
			Color: g.brand.Palette.White.Hex(),
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{g.brand.Palette.Accent.Hex()},
			Pattern: 1,
		},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("ошибка создания стиля заголовка: %w", err)
	}

	for i, sh := range sheets(req) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sh.name); err != nil {
				return nil, err
			}
		} else if _, err := f.NewSheet(sh.name); err != nil {
			return nil, err
		}
		if err := writeSheet(f, sh, headerStyle); err != nil {
			return nil, fmt.Errorf("ошибка заполнения листа %s: %w", sh.name, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		logger.WithError(err).Error("Ошибка записи Excel файла")
		return nil, fmt.Errorf("ошибка генерации Excel файла: %w", err)
	}
	return buf, nil
}

func writeSheet(f *excelize.File, sh sheet, headerStyle int) error {
	header := make([]interface{}, len(sh.header))
	for i, h := range sh.header {
		header[i] = h
	}
	if err := f.SetSheetRow(sh.name, "A1", &header); err != nil {
		return err
	}

	last, err := excelize.CoordinatesToCellName(len(sh.header), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sh.name, "A1", last, headerStyle); err != nil {
		return err
	}

	for i, row := range sh.rows {
		if err := f.SetSheetRow(sh.name, "A"+strconv.Itoa(i+2), &row); err != nil {
			return err
		}
	}

	for i, w := range sh.widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sh.name, col, col, w); err != nil {
			return err
		}
	}
	return nil
}

// GetMimeType возвращает MIME тип для Excel файлов
func (g *ExcelWorkbookGenerator) GetMimeType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// GetFileExtension возвращает расширение файла для Excel
func (g *ExcelWorkbookGenerator) GetFileExtension() string {
	return "xlsx"
}
