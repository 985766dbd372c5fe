package service_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/case-import-api/internal/config"
	"github.com/case-import-api/internal/mapping"
	"github.com/case-import-api/internal/mocks"
	"github.com/case-import-api/internal/models"
	"github.com/case-import-api/internal/options"
	"github.com/case-import-api/internal/repository"
	"github.com/case-import-api/internal/service"
	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

// testdataPath returns the absolute path to a file in the testdata directory.
func testdataPath(t testing.TB, filename string) string {
	t.Helper()
	_, currentFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("cannot determine test file path")
	}
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(currentFile)))
	path := filepath.Join(projectRoot, "testdata", filename)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Skipf("testdata file not found: %s", path)
	}
	return path
}

type testHarness struct {
	services   *service.Services
	caseRepo   *mocks.MockCaseRepository
	optionRepo *mocks.MockOptionRepository
}

func newTestHarness(t *testing.T) *testHarness {
	t.Helper()
	return newTestHarnessWith(t, nil)
}

func newTestHarnessWith(t *testing.T, sectors mapping.SectorMap) *testHarness {
	t.Helper()

	caseRepo := mocks.NewMockCaseRepository()
	optionRepo := mocks.NewMockOptionRepository()
	optionRepo.Options[options.CategoryAntenne] = []models.DropdownOption{
		{Value: "Antenne Cureghem"}, {Value: "Antenne Centre"},
	}

	repos := &repository.Repositories{
		Case:   caseRepo,
		Option: optionRepo,
	}

	cfg := &config.Config{
		Import: config.ImportConfig{
			MaxUploadSize:     10 * 1024 * 1024,
			MaxFiles:          20,
			DefaultCodePostal: "1070",
			DefaultVille:      "Anderlecht",
			DefaultPays:       "Belgique",
			DefaultEtat:       "Actif",
		},
	}

	log := zerolog.Nop()
	services := service.NewServices(repos, options.Uncached(optionRepo), sectors, cfg, log)

	return &testHarness{
		services:   services,
		caseRepo:   caseRepo,
		optionRepo: optionRepo,
	}
}

func csvFile(name string, lines ...string) models.ImportFile {
	return models.ImportFile{Name: name, Data: []byte(strings.Join(lines, "\n") + "\n")}
}

func findCase(repo *mocks.MockCaseRepository, nom string) *models.Case {
	for _, c := range repo.Cases {
		if c.Nom == nom {
			return c
		}
	}
	return nil
}

func TestImportBatch_CSVFixture(t *testing.T) {
	h := newTestHarness(t)

	data, err := os.ReadFile(testdataPath(t, "clients_anderlecht.csv"))
	if err != nil {
		t.Fatalf("Failed to read fixture: %v", err)
	}

	result, err := h.services.Import.ImportBatch(context.Background(), "tenant-1",
		[]models.ImportFile{{Name: "clients_anderlecht.csv", Data: data}}, nil, nil)
	if err != nil {
		t.Fatalf("ImportBatch failed: %v", err)
	}

	// 5 rows below the header: one blank, one with an invalid e-mail
	if result.TotalRows != 5 {
		t.Errorf("Expected 5 total rows, got %d", result.TotalRows)
	}
	if result.Imported != 3 {
		t.Errorf("Expected 3 imported, got %d", result.Imported)
	}
	if result.Errors != 1 {
		t.Errorf("Expected 1 error, got %d", result.Errors)
	}
	if len(h.caseRepo.Cases) != 3 {
		t.Fatalf("Expected 3 stored cases, got %d", len(h.caseRepo.Cases))
	}

	dupont := findCase(h.caseRepo, "Dupont")
	if dupont == nil {
		t.Fatal("Dupont not imported")
	}
	if dupont.TenantID != "tenant-1" {
		t.Errorf("Expected tenant-1, got %q", dupont.TenantID)
	}
	if dupont.DateNaissance != "1990-12-25" {
		t.Errorf("Expected 1990-12-25, got %q", dupont.DateNaissance)
	}
	if dupont.Genre != "Homme" || dupont.Nationalite != "Belgique" {
		t.Errorf("Unexpected genre/nationality: %q/%q", dupont.Genre, dupont.Nationalite)
	}
	if dupont.Antenne != "Antenne Cureghem" {
		t.Errorf("Expected canonical antenna, got %q", dupont.Antenne)
	}
	if dupont.SourceFile != "clients_anderlecht.csv" {
		t.Errorf("Expected source file, got %q", dupont.SourceFile)
	}

	martin := findCase(h.caseRepo, "Martin")
	if martin == nil {
		t.Fatal("Martin not imported")
	}
	if martin.Prenom != "Amélie" {
		t.Errorf("Expected accented given name preserved, got %q", martin.Prenom)
	}
	if martin.Adresse.Numero != "250" || martin.Adresse.Boite != "4" {
		t.Errorf("Expected 250 bte 4, got %q/%q", martin.Adresse.Numero, martin.Adresse.Boite)
	}

	nguyen := findCase(h.caseRepo, "Nguyen")
	if nguyen == nil {
		t.Fatal("Nguyen not imported")
	}
	if nguyen.DateNaissance != "1992-04-15" {
		t.Errorf("Expected compact date normalised, got %q", nguyen.DateNaissance)
	}
	if nguyen.Email != "" {
		t.Errorf("Expected placeholder e-mail cleared, got %q", nguyen.Email)
	}
	if nguyen.Adresse.Ville != "Anderlecht" || nguyen.Antenne != "Non spécifié" {
		t.Errorf("Expected defaults, got ville=%q antenne=%q", nguyen.Adresse.Ville, nguyen.Antenne)
	}
}

func TestImportBatch_XLSXSerialDates(t *testing.T) {
	h := newTestHarness(t)

	f := excelize.NewFile()
	defer f.Close()
	for col, v := range []interface{}{"NOM", "PRENOM", "DATE NAISSANCE", "Date d'ouverture"} {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		f.SetCellValue("Sheet1", cell, v)
	}
	f.SetCellValue("Sheet1", "A2", "Dupont")
	f.SetCellValue("Sheet1", "B2", "Jean")
	f.SetCellValue("Sheet1", "C2", 33232)
	f.SetCellValue("Sheet1", "D2", "03/01/2024")
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("Failed to build workbook: %v", err)
	}

	result, err := h.services.Import.ImportBatch(context.Background(), "tenant-1",
		[]models.ImportFile{{Name: "export.xlsx", Data: buf.Bytes()}}, nil, nil)
	if err != nil {
		t.Fatalf("ImportBatch failed: %v", err)
	}
	if result.Imported != 1 || result.Errors != 0 {
		t.Fatalf("Expected 1 imported and no error, got %+v", result)
	}

	c := findCase(h.caseRepo, "Dupont")
	if c.DateNaissance != "1990-12-25" {
		t.Errorf("Expected serial converted to 1990-12-25, got %q", c.DateNaissance)
	}
	if c.DateOuverture != "2024-01-03" {
		t.Errorf("Expected 2024-01-03, got %q", c.DateOuverture)
	}
}

func TestImportBatch_ExplicitMapping(t *testing.T) {
	h := newTestHarness(t)

	file := csvFile("liste.csv",
		"Client;Remarque;Bénéficiaire",
		"Dupont;à rappeler;Jean",
	)
	overrides := models.ColumnMapping{"nom": "Client", "prenom": "Bénéficiaire"}

	result, err := h.services.Import.ImportBatch(context.Background(), "tenant-1", []models.ImportFile{file}, overrides, nil)
	if err != nil {
		t.Fatalf("ImportBatch failed: %v", err)
	}
	if result.Imported != 1 {
		t.Fatalf("Expected 1 imported, got %+v", result)
	}

	c := findCase(h.caseRepo, "Dupont")
	if c == nil || c.Prenom != "Jean" {
		t.Fatalf("Expected mapped names, got %+v", c)
	}
}

func TestImportBatch_InsertFailureIsolatedToFile(t *testing.T) {
	h := newTestHarness(t)

	calls := 0
	h.caseRepo.BulkInsertFunc = func(ctx context.Context, tenantID string, cases []*models.Case) (int, error) {
		calls++
		if calls == 2 {
			return 0, fmt.Errorf("duplicate key value violates unique constraint")
		}
		return len(cases), nil
	}

	files := []models.ImportFile{
		csvFile("a.csv", "Nom,Prénom", "Dupont,Jean", "Martin,Amélie"),
		csvFile("b.csv", "Nom,Prénom", "Peeters,An", "Janssens,Tom", "Maes,Lotte"),
		csvFile("c.csv", "Nom,Prénom", "Claes,Els"),
	}

	result, err := h.services.Import.ImportBatch(context.Background(), "tenant-1", files, nil, nil)
	if err != nil {
		t.Fatalf("ImportBatch failed: %v", err)
	}

	if len(result.Files) != 3 {
		t.Fatalf("Expected 3 file results, got %d", len(result.Files))
	}
	if result.Files[0].Imported != 2 || result.Files[2].Imported != 1 {
		t.Errorf("Unexpected per-file imports: %+v", result.Files)
	}
	failed := result.Files[1]
	if failed.Imported != 0 || failed.Errors != 1 || failed.TotalRows != 3 {
		t.Errorf("Expected failed insert to count one error, got %+v", failed)
	}
	if failed.Error == "" {
		t.Error("Expected insert failure message")
	}
	if result.TotalRows != 6 || result.Imported != 3 || result.Errors != 1 {
		t.Errorf("Unexpected totals: %+v", result)
	}
}

func TestImportBatch_DecodeFailures(t *testing.T) {
	h := newTestHarness(t)

	files := []models.ImportFile{
		{Name: "broken.xlsx", Data: []byte("PK\x03\x04 definitely not a workbook")},
		{Name: "legacy.xls", Data: []byte{0xD0, 0xCF, 0x11, 0xE0}},
		csvFile("ok.csv", "Nom;Prénom", "Dupont;Jean"),
	}

	result, err := h.services.Import.ImportBatch(context.Background(), "tenant-1", files, nil, nil)
	if err != nil {
		t.Fatalf("ImportBatch failed: %v", err)
	}

	for _, fr := range result.Files[:2] {
		if fr.Errors != 1 || fr.Error == "" || fr.TotalRows != 0 {
			t.Errorf("Expected %s to count one decode error, got %+v", fr.FileName, fr)
		}
	}
	if result.Files[2].Imported != 1 {
		t.Errorf("Expected valid file imported after failures, got %+v", result.Files[2])
	}
	if result.Errors != 2 {
		t.Errorf("Expected 2 errors, got %d", result.Errors)
	}
}

func TestImportBatch_EmptyFile(t *testing.T) {
	h := newTestHarness(t)

	files := []models.ImportFile{
		{Name: "empty.csv", Data: nil},
		csvFile("header-only.csv", "Nom;Prénom"),
	}

	result, err := h.services.Import.ImportBatch(context.Background(), "tenant-1", files, nil, nil)
	if err != nil {
		t.Fatalf("ImportBatch failed: %v", err)
	}
	if result.TotalRows != 0 || result.Errors != 0 || result.Imported != 0 {
		t.Errorf("Expected empty result, got %+v", result)
	}
	if h.caseRepo.BulkInsertCalls != 0 {
		t.Errorf("Expected no insert, got %d", h.caseRepo.BulkInsertCalls)
	}
}

func TestImportBatch_Progress(t *testing.T) {
	h := newTestHarness(t)

	files := []models.ImportFile{
		csvFile("a.csv", "Nom;Prénom", "Dupont;Jean"),
		csvFile("b.csv", "Nom;Prénom", "Martin;Amélie"),
	}

	var seen []models.ImportProgress
	progress := func(p models.ImportProgress) {
		seen = append(seen, p)
	}

	if _, err := h.services.Import.ImportBatch(context.Background(), "tenant-1", files, nil, progress); err != nil {
		t.Fatalf("ImportBatch failed: %v", err)
	}

	want := []models.ImportProgress{
		{Current: 1, Total: 2, FileName: "a.csv"},
		{Current: 2, Total: 2, FileName: "b.csv"},
	}
	if len(seen) != len(want) {
		t.Fatalf("Expected %d progress calls, got %d", len(want), len(seen))
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Errorf("progress[%d] = %+v, want %+v", i, seen[i], want[i])
		}
	}
}

func TestImportBatch_CancelledBetweenFiles(t *testing.T) {
	h := newTestHarness(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	files := []models.ImportFile{
		csvFile("a.csv", "Nom;Prénom", "Dupont;Jean"),
		csvFile("b.csv", "Nom;Prénom", "Martin;Amélie"),
	}

	// Cancelling while the first file is announced must not stop that file
	progress := func(p models.ImportProgress) {
		if p.Current == 1 {
			cancel()
		}
	}

	result, err := h.services.Import.ImportBatch(ctx, "tenant-1", files, nil, progress)
	if err != context.Canceled {
		t.Fatalf("Expected context.Canceled, got %v", err)
	}
	if len(result.Files) != 1 || result.Imported != 1 {
		t.Errorf("Expected only the first file imported, got %+v", result)
	}
	if findCase(h.caseRepo, "Martin") != nil {
		t.Error("Second file should not have been imported")
	}
}

func TestImportBatch_MissingNamesFallBack(t *testing.T) {
	h := newTestHarness(t)

	file := csvFile("partial.csv", "Nom;Prénom;Téléphone", ";;0470 12 34 56")

	result, err := h.services.Import.ImportBatch(context.Background(), "tenant-1", []models.ImportFile{file}, nil, nil)
	if err != nil {
		t.Fatalf("ImportBatch failed: %v", err)
	}
	if result.Imported != 1 {
		t.Fatalf("Expected row with only a phone imported, got %+v", result)
	}
	c := findCase(h.caseRepo, "Non précisé")
	if c == nil || c.Prenom != "Non précisé" || c.Telephone != "0470 12 34 56" {
		t.Errorf("Unexpected case: %+v", c)
	}
}

func TestImportBatch_DuplicateEmailsRejected(t *testing.T) {
	h := newTestHarness(t)
	h.caseRepo.Add(&models.Case{ID: "old", TenantID: "tenant-1", Nom: "Ancien", Prenom: "Dossier", Email: "jean.dupont@example.be"})
	h.caseRepo.Add(&models.Case{ID: "other", TenantID: "tenant-2", Nom: "Autre", Prenom: "Tenant", Email: "claire@example.be"})

	files := []models.ImportFile{
		csvFile("a.csv", "Nom;Prénom;E-mail",
			"Dupont;Jean;Jean.Dupont@example.be",
			"Martin;Claire;claire@example.be",
			"Martin;Claire bis;CLAIRE@example.be",
			"Nguyen;Linh;",
		),
		csvFile("b.csv", "Nom;Prénom;E-mail", "Martin;Claire;claire@example.be"),
	}

	result, err := h.services.Import.ImportBatch(context.Background(), "tenant-1", files, nil, nil)
	if err != nil {
		t.Fatalf("ImportBatch failed: %v", err)
	}

	// a.csv: Dupont exists already, Claire bis repeats an e-mail of the file
	// b.csv: Claire was stored by a.csv
	if result.TotalRows != 5 || result.Imported != 2 || result.Errors != 3 {
		t.Errorf("Unexpected counters: %+v", result)
	}
	if findCase(h.caseRepo, "Dupont") != nil {
		t.Error("Row with a registered e-mail must not be stored")
	}
	if findCase(h.caseRepo, "Nguyen") == nil {
		t.Error("Row without e-mail must be stored")
	}
}

func TestImportBatch_EmailCheckFailure(t *testing.T) {
	h := newTestHarness(t)
	h.caseRepo.FindEmailsError = fmt.Errorf("connection reset")

	file := csvFile("a.csv", "Nom;Prénom;E-mail", "Dupont;Jean;jean@example.be", "Martin;Claire;")

	result, err := h.services.Import.ImportBatch(context.Background(), "tenant-1", []models.ImportFile{file}, nil, nil)
	if err != nil {
		t.Fatalf("ImportBatch failed: %v", err)
	}
	if result.Imported != 0 || result.Errors != 1 {
		t.Errorf("Expected one file-level error and nothing stored, got %+v", result)
	}
	if !strings.Contains(result.Files[0].Error, "check emails") {
		t.Errorf("Unexpected file error: %q", result.Files[0].Error)
	}
	if h.caseRepo.BulkInsertCalls != 0 {
		t.Errorf("Expected no insert, got %d", h.caseRepo.BulkInsertCalls)
	}
}

func TestImportBatch_SectorFromStreet(t *testing.T) {
	sectors, err := mapping.ParseSectorMap(strings.NewReader(`{"Cureghem": ["Rue Wayez", "Chaussée de Mons 1-153/2-154"]}`))
	if err != nil {
		t.Fatalf("ParseSectorMap failed: %v", err)
	}
	h := newTestHarnessWith(t, sectors)

	file := csvFile("a.csv", "Nom;Prénom;Adresse;Secteur",
		"Dupont;Jean;rue wayez 12;",
		"Martin;Claire;Chaussée de Mons;",
		"Nguyen;Linh;Boulevard Poincaré;",
		"Peeters;An;Rue Wayez;Centre",
	)

	if _, err := h.services.Import.ImportBatch(context.Background(), "tenant-1", []models.ImportFile{file}, nil, nil); err != nil {
		t.Fatalf("ImportBatch failed: %v", err)
	}

	want := map[string]string{"Dupont": "Cureghem", "Martin": "Cureghem", "Nguyen": "Non spécifié", "Peeters": "Centre"}
	for nom, sector := range want {
		c := findCase(h.caseRepo, nom)
		if c == nil {
			t.Fatalf("%s not imported", nom)
		}
		if c.Secteur != sector {
			t.Errorf("%s: secteur = %q, want %q", nom, c.Secteur, sector)
		}
	}
}
