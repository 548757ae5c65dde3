package bbtemplar_test

import (
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/nikitaxru/bbtemplar"
)

// TestXLSXContext — листы книги становятся массивами записей, первая строка — заголовки
func (s *TemplateSuite) TestXLSXContext() {
	tmpDir := s.T().TempDir()
	book := filepath.Join(tmpDir, "files.xlsx")

	f := excelize.NewFile()
	sheet := "Sheet1"
	s.Require().NoError(f.SetSheetName(sheet, "Release files"))
	sheet = "Release files"
	_ = f.SetCellValue(sheet, "A1", "File name")
	_ = f.SetCellValue(sheet, "B1", "platform")
	_ = f.SetCellValue(sheet, "C1", "")
	_ = f.SetCellValue(sheet, "A2", "app.exe")
	_ = f.SetCellValue(sheet, "B2", "win")
	_ = f.SetCellValue(sheet, "C2", "x64")
	// пустая строка пропускается
	_ = f.SetCellValue(sheet, "A4", "app.dmg")
	_ = f.SetCellValue(sheet, "D4", "extra")

	_, err := f.NewSheet("Файлы")
	s.Require().NoError(err)
	_ = f.SetCellValue("Файлы", "A1", "n")
	_ = f.SetCellValue("Файлы", "A2", "1")
	s.Require().NoError(f.SaveAs(book), "save book")

	ctx, err := bbtemplar.ContextFromXLSX(book)
	s.Require().NoError(err, "load context")

	tpl := "<!--LOOP:Release_files-->{File_name}|{platform}|{C}|{D};<!--/LOOP:Release_files-->"
	s.Equal("app.exe|win|x64|{D};app.dmg|||extra;", bbtemplar.Render(tpl, ctx))

	// имя листа вне \w заменяется порядковым
	s.Equal("1", bbtemplar.Render("<!--LOOP:Sheet2-->{n}<!--/LOOP:Sheet2-->", ctx))
}

// TestXLSXContextMissingFile — ошибка открытия книги
func (s *TemplateSuite) TestXLSXContextMissingFile() {
	_, err := bbtemplar.ContextFromXLSX(filepath.Join(s.T().TempDir(), "missing.xlsx"))
	s.Error(err)
}
