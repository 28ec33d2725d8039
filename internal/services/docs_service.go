package services

import (
	"bytes"
	"database/sql"
	"fmt"
	"strings"
	"time"

	intconfig "backend/internal/config"
	"backend/internal/domain"
	"backend/internal/domain/models"
	"backend/internal/repositories"
	"backend/internal/utils"

	"github.com/phpdave11/gofpdf"
)

// DocsService renders printable documents: booking e-tickets and wallet
// statements.
type DocsService struct {
	BookingRepo repositories.BookingRepository
	RouteRepo   repositories.RouteRepository
	UserRepo    repositories.UserRepository
	WalletRepo  repositories.WalletRepository
	DB          *sql.DB
	RequestID   string
}

func (s DocsService) db() *sql.DB {
	if s.DB != nil {
		return s.DB
	}
	return intconfig.DB
}

func (s DocsService) bookings() repositories.BookingRepository {
	if s.BookingRepo.DB != nil {
		return s.BookingRepo
	}
	return repositories.BookingRepository{DB: s.db()}
}

func (s DocsService) routes() repositories.RouteRepository {
	if s.RouteRepo.DB != nil {
		return s.RouteRepo
	}
	return repositories.RouteRepository{DB: s.db()}
}

func (s DocsService) users() repositories.UserRepository {
	if s.UserRepo.DB != nil {
		return s.UserRepo
	}
	return repositories.UserRepository{DB: s.db()}
}

func (s DocsService) wallets() repositories.WalletRepository {
	if s.WalletRepo.DB != nil {
		return s.WalletRepo
	}
	return repositories.WalletRepository{DB: s.db()}
}

// BuildETicket renders the e-ticket PDF for a booking the actor may see.
func (s DocsService) BuildETicket(bookingID int64, actor domain.RequestContext) ([]byte, string, error) {
	b, err := s.bookings().GetByID(bookingID)
	if err != nil {
		return nil, "", err
	}
	if b.UserID != actor.UserID && !actor.IsAdmin() {
		return nil, "", domain.ForbiddenError{Msg: "bukan pemilik booking"}
	}
	if b.Status != models.BookingConfirmed && b.Status != models.BookingCompleted {
		return nil, "", domain.InvalidStateError{State: b.Status, Msg: "e-ticket hanya untuk booking aktif"}
	}

	user, err := s.users().GetByID(b.UserID)
	if err != nil {
		return nil, "", err
	}
	route, err := s.routes().GetByID(b.RouteID)
	if err != nil {
		return nil, "", err
	}
	fromStop, err := s.routes().GetStop(b.FromStopID)
	if err != nil {
		return nil, "", err
	}
	toStop, err := s.routes().GetStop(b.ToStopID)
	if err != nil {
		return nil, "", err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("E-Ticket Shuttle", false)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "E-TICKET SHUTTLE KAMPUS")
	pdf.Ln(12)

	peak := "off-peak"
	if b.IsPeakHour {
		peak = "peak hour"
	}

	pdf.SetFont("Helvetica", "", 12)
	lines := []string{
		fmt.Sprintf("Nama           : %s", safe(user.Name, "-")),
		fmt.Sprintf("Route          : %s (%s)", safe(route.Name, "-"), safe(route.Code, "-")),
		fmt.Sprintf("Dari           : %s", safe(fromStop.Name, "-")),
		fmt.Sprintf("Tujuan         : %s", safe(toStop.Name, "-")),
		fmt.Sprintf("Berangkat      : %s", utils.FormatDateTime(b.DepartureTime)),
		fmt.Sprintf("Tarif          : %s (%s)", utils.FormatPoints(b.Fare), peak),
		fmt.Sprintf("Status         : %s", b.Status),
		fmt.Sprintf("Kode Booking   : #%d", b.ID),
		fmt.Sprintf("Kode Ticket    : TCK-%d-%d", b.ID, b.DebitTxID),
	}
	for _, line := range lines {
		pdf.Cell(0, 7, line)
		pdf.Ln(7)
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 10)
	pdf.MultiCell(0, 6, "Catatan: E-ticket ini berlaku untuk 1 penumpang. Harap tunjukkan saat naik shuttle.", "", "", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", domain.InternalError{Err: err}
	}

	filename := fmt.Sprintf("ETICKET_%d_%s.pdf", b.ID, safeFilenamePart(user.Name))
	return buf.Bytes(), filename, nil
}

// BuildWalletStatement renders the last entries of the actor's wallet.
func (s DocsService) BuildWalletStatement(actor domain.RequestContext, limit int) ([]byte, string, error) {
	wallet, err := s.wallets().GetByUserID(actor.UserID)
	if err != nil {
		return nil, "", err
	}
	user, err := s.users().GetByID(actor.UserID)
	if err != nil {
		return nil, "", err
	}
	if limit <= 0 || limit > historyMaxLimit {
		limit = 50
	}
	entries, err := s.wallets().History(wallet.ID, limit, 0)
	if err != nil {
		return nil, "", domain.InternalError{Err: err}
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Mutasi Wallet", false)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "MUTASI WALLET")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 7, fmt.Sprintf("Nama    : %s", safe(user.Name, "-")))
	pdf.Ln(7)
	pdf.Cell(0, 7, fmt.Sprintf("Saldo   : %s", utils.FormatPoints(wallet.Balance)))
	pdf.Ln(7)
	pdf.Cell(0, 7, fmt.Sprintf("Dicetak : %s", utils.FormatDateTime(time.Now())))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.Cell(35, 7, "Tanggal")
	pdf.Cell(45, 7, "Jenis")
	pdf.Cell(35, 7, "Jumlah")
	pdf.Cell(35, 7, "Saldo Akhir")
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 10)
	for _, e := range entries {
		pdf.Cell(35, 6, utils.FormatDate(e.CreatedAt))
		pdf.Cell(45, 6, e.Type)
		pdf.Cell(35, 6, utils.FormatPoints(e.Amount))
		pdf.Cell(35, 6, utils.FormatPoints(e.BalanceAfter))
		pdf.Ln(6)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", domain.InternalError{Err: err}
	}

	filename := fmt.Sprintf("MUTASI_%d_%s.pdf", wallet.ID, time.Now().Format("20060102"))
	return buf.Bytes(), filename, nil
}

func safe(s, def string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	return s
}

func safeFilenamePart(s string) string {
	s = strings.TrimSpace(s)
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-")
	s = replacer.Replace(s)
	if s == "" {
		return "x"
	}
	return s
}
