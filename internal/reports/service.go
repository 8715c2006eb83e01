package reports

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lounaagency/agri-admin-dashboard/internal/config"
	"github.com/lounaagency/agri-admin-dashboard/internal/dashboard"
	"github.com/lounaagency/agri-admin-dashboard/internal/finance"
	"github.com/lounaagency/agri-admin-dashboard/internal/metrics"
	"github.com/lounaagency/agri-admin-dashboard/internal/projects"
	"github.com/lounaagency/agri-admin-dashboard/internal/reports/export"
	"github.com/lounaagency/agri-admin-dashboard/pkg/storage"
)

var projectColumns = []export.Column{
	{Key: "id", Label: "ID"},
	{Key: "titre", Label: "Titre"},
	{Key: "statut", Label: "Statut"},
	{Key: "cultures", Label: "Cultures"},
	{Key: "surface_ha", Label: "Surface (ha)"},
	{Key: "localisation", Label: "Localisation"},
	{Key: "date_lancement", Label: "Lancement"},
	{Key: "budget_total", Label: "Budget (Ar)"},
	{Key: "created_at", Label: "Créé le"},
}

var costColumns = []export.Column{
	{Key: "id", Label: "ID"},
	{Key: "type_depense", Label: "Type de dépense"},
	{Key: "montant_par_hectare", Label: "Montant / ha"},
	{Key: "montant_total", Label: "Montant total"},
	{Key: "statut_paiement", Label: "Statut"},
}

var paymentColumns = []export.Column{
	{Key: "id", Label: "ID"},
	{Key: "id_cout", Label: "Coût"},
	{Key: "date_paiement", Label: "Date"},
	{Key: "montant", Label: "Montant"},
	{Key: "methode_paiement", Label: "Méthode"},
	{Key: "reference_transaction", Label: "Référence"},
}

var summaryColumns = []export.Column{
	{Key: "poste", Label: "Poste"},
	{Key: "montant", Label: "Montant"},
}

// Service builds exports from the entity and dashboard services
type Service struct {
	projects  projects.Service
	finance   finance.Service
	dashboard dashboard.Service
	store     storage.S3Client
	storage   config.StorageConfig
	logger    *zap.Logger
	now       func() time.Time
}

// NewService creates a new reports service. store may be nil when archiving is disabled.
func NewService(
	projectService projects.Service,
	financeService finance.Service,
	dashboardService dashboard.Service,
	store storage.S3Client,
	storageConfig config.StorageConfig,
	logger *zap.Logger,
) *Service {
	return &Service{
		projects:  projectService,
		finance:   financeService,
		dashboard: dashboardService,
		store:     store,
		storage:   storageConfig,
		logger:    logger,
		now:       time.Now,
	}
}

// ProjectsCSV exports every project with its culture names
func (s *Service) ProjectsCSV(ctx context.Context) (*File, error) {
	list, err := s.projects.ListProjects(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	rows := make([]export.Row, 0, len(list))
	for _, p := range list {
		links, err := s.projects.ListProjectCultures(ctx, p.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to list cultures of project %d: %w", p.ID, err)
		}
		names := make([]string, 0, len(links))
		for _, l := range links {
			if l.Culture != nil {
				names = append(names, l.Culture.Name)
			}
		}
		rows = append(rows, export.Row{
			"id":             p.ID,
			"titre":          p.Title,
			"statut":         p.Status,
			"cultures":       strings.Join(names, ", "),
			"surface_ha":     p.SurfaceHa,
			"localisation":   p.Location,
			"date_lancement": p.LaunchDate,
			"budget_total":   p.Budget,
			"created_at":     p.CreatedAt,
		})
	}

	var buf bytes.Buffer
	w, err := export.NewCSVExporter(&buf, export.DefaultCSVOptions())
	if err != nil {
		return nil, err
	}
	if err := w.WriteRows(rows, projectColumns); err != nil {
		return nil, err
	}
	if err := w.Flush(); err != nil {
		return nil, err
	}

	s.logger.Info("Projects exported", zap.Int("rows", w.RowCount()))
	return s.file("projets", FormatCSV, buf.Bytes()), nil
}

// ProjectFinanceWorkbook exports the summary, costs and payments of one project
func (s *Service) ProjectFinanceWorkbook(ctx context.Context, projectID int) (*File, error) {
	summary, err := s.finance.GetFinancialSummary(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if summary == nil {
		return nil, ErrProjectNotFound
	}

	costs, err := s.finance.ListProjectCosts(ctx, projectID)
	if err != nil {
		return nil, err
	}

	costRows := make([]export.Row, 0, len(costs))
	var paymentRows []export.Row
	for _, c := range costs {
		costRows = append(costRows, export.Row{
			"id":                  c.ID,
			"type_depense":        c.ExpenseType,
			"montant_par_hectare": c.AmountPerHectare,
			"montant_total":       c.TotalAmount,
			"statut_paiement":     c.PaymentStatus,
		})

		payments, err := s.finance.ListPayments(ctx, c.ID)
		if err != nil {
			return nil, err
		}
		for _, p := range payments {
			paymentRows = append(paymentRows, export.Row{
				"id":                    p.ID,
				"id_cout":               p.CostID,
				"date_paiement":         p.PaidAt,
				"montant":               p.Amount,
				"methode_paiement":      p.Method,
				"reference_transaction": p.Reference,
			})
		}
	}

	summaryRows := []export.Row{
		{"poste": "Budget total", "montant": summary.TotalBudget},
		{"poste": "Engagé", "montant": summary.TotalCommitted},
		{"poste": "Payé", "montant": summary.TotalPaid},
		{"poste": "Restant", "montant": summary.Remaining},
	}

	book := export.NewExcelExporter(export.DefaultExcelOptions())
	defer book.Close()

	if err := book.AddSheet("Résumé", summaryColumns, summaryRows); err != nil {
		return nil, err
	}
	if err := book.AddSheet("Coûts", costColumns, costRows); err != nil {
		return nil, err
	}
	if err := book.AddSheet("Paiements", paymentColumns, paymentRows); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := book.Render(&buf); err != nil {
		return nil, fmt.Errorf("failed to render workbook: %w", err)
	}
	return s.file(fmt.Sprintf("finances-projet-%d", projectID), FormatExcel, buf.Bytes()), nil
}

// DashboardPDF renders the dashboard overview as a printable report
func (s *Service) DashboardPDF(ctx context.Context) (*File, error) {
	overview := s.dashboard.GetOverview(ctx)

	opts := export.DefaultPDFOptions()
	opts.Title = "Maintso Vola - Tableau de bord"
	opts.Values.MoneyFormatter = dashboard.FormatAriary
	doc := export.NewPDFGenerator(opts, overview.ComputedAt)

	st := overview.Stats
	doc.AddSummarySection("Statistiques", []export.KeyValue{
		{Key: "Utilisateurs", Value: fmt.Sprintf("%d", st.UserCount)},
		{Key: "Nouveaux (7 jours)", Value: fmt.Sprintf("%d", st.NewUserCount)},
		{Key: "Projets actifs", Value: fmt.Sprintf("%d", st.ActiveProjects)},
		{Key: "Projets en attente", Value: fmt.Sprintf("%d", st.PendingProjects)},
		{Key: "Cultures", Value: fmt.Sprintf("%d", st.CultureCount)},
		{Key: "Investissements", Value: dashboard.FormatAriary(st.TotalRevenue)},
	})

	revenue := make([]export.Row, len(overview.Revenue))
	for i, p := range overview.Revenue {
		revenue[i] = export.Row{"mois": p.Name, "montant": p.Value}
	}
	doc.AddTable("Revenus mensuels", []export.Column{{Key: "mois", Label: "Mois"}, {Key: "montant", Label: "Montant"}}, revenue)

	byType := make([]export.Row, len(overview.ProjectsByType))
	for i, t := range overview.ProjectsByType {
		byType[i] = export.Row{"culture": t.Name, "projets": t.Value}
	}
	doc.AddTable("Projets par culture", []export.Column{{Key: "culture", Label: "Culture"}, {Key: "projets", Label: "Projets"}}, byType)

	milestones := make([]export.Row, len(overview.Milestones))
	for i, m := range overview.Milestones {
		milestones[i] = export.Row{
			"projet": m.Project, "jalon": m.Milestone, "echeance": m.Date,
			"progression": fmt.Sprintf("%d %%", m.Progress),
		}
	}
	doc.AddTable("Jalons à venir", []export.Column{
		{Key: "projet", Label: "Projet"},
		{Key: "jalon", Label: "Jalon"},
		{Key: "echeance", Label: "Échéance"},
		{Key: "progression", Label: "Progression"},
	}, milestones)

	activities := make([]export.Row, len(overview.Activities))
	for i, a := range overview.Activities {
		activities[i] = export.Row{"quand": a.Time, "titre": a.Title, "detail": a.Desc}
	}
	doc.AddTable("Activités récentes", []export.Column{
		{Key: "quand", Label: "Quand"},
		{Key: "titre", Label: "Activité"},
		{Key: "detail", Label: "Détail"},
	}, activities)

	data, err := doc.Bytes()
	if err != nil {
		return nil, fmt.Errorf("failed to render pdf: %w", err)
	}
	return s.file("tableau-de-bord", FormatPDF, data), nil
}

// Archive uploads f and returns a presigned download link
func (s *Service) Archive(ctx context.Context, f *File) (*ArchivedFile, error) {
	if s.store == nil || !s.storage.Enabled {
		return nil, ErrArchiveDisabled
	}

	key := path.Join(
		s.storage.Prefix,
		f.GeneratedAt.Format("2006/01/02"),
		fmt.Sprintf("%s-%s.%s", f.Name, uuid.NewString()[:8], f.Format),
	)
	if err := s.store.Upload(ctx, s.storage.Bucket, key, f.ContentType(), bytes.NewReader(f.Data)); err != nil {
		s.logger.Error("Failed to archive report", zap.String("key", key), zap.Error(err))
		return nil, err
	}

	url, err := s.store.GetPresignedURL(ctx, s.storage.Bucket, key, s.storage.PresignTTL)
	if err != nil {
		return nil, err
	}

	metrics.RecordExport(string(f.Format), true)
	s.logger.Info("Report archived", zap.String("bucket", s.storage.Bucket), zap.String("key", key))
	return &ArchivedFile{Key: key, URL: url, ExpiresAt: s.now().Add(s.storage.PresignTTL)}, nil
}

func (s *Service) file(name string, format ExportFormat, data []byte) *File {
	metrics.RecordExport(string(format), false)
	return &File{Name: name, Format: format, Data: data, GeneratedAt: s.now()}
}
