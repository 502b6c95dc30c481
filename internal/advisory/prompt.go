package advisory

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// formatRupiah renders whole rupiah with dot thousand separators, e.g. 5.000.000.
func formatRupiah(d decimal.Decimal) string {
	s := d.Round(0).StringFixed(0)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}

func analysisPrompt(in AnalysisInput) string {
	n, outstanding := activeDebt(in.Employee.EmployeeID, in.ExistingLoans)
	return fmt.Sprintf(`Anda adalah seorang analis resiko kredit keuangan profesional untuk sebuah perusahaan di Indonesia.
Lakukan analisis singkat (maksimal 3 kalimat) mengenai kelayakan pengajuan kasbon/pinjaman berikut:

Data Karyawan:
- Nama: %s
- Gaji Bulanan: Rp %s
- Lama Bekerja: Sejak %s
- Jabatan: %s

Status Hutang Saat Ini:
- Total Sisa Hutang: Rp %s
- Jumlah Pinjaman Aktif: %d

Pengajuan Baru:
- Jumlah Diminta: Rp %s
- Tenor: %d bulan
- Alasan: %s

Berikan rekomendasi: DISETUJUI, DIPERTIMBANGKAN, atau DITOLAK, beserta alasannya. Fokus pada kemampuan bayar (Debt Service Ratio).`,
		in.Employee.Name,
		formatRupiah(in.Employee.Salary),
		in.Employee.JoinDate.Format("2006-01-02"),
		in.Employee.Position,
		formatRupiah(outstanding),
		n,
		formatRupiah(in.Amount),
		in.TermMonths,
		in.Reason,
	)
}

func advicePrompt(in AdviceInput) string {
	_, debt := activeDebt(in.Employee.EmployeeID, in.Loans)
	return fmt.Sprintf(`Berikan saran keuangan singkat dan memotivasi untuk karyawan ini dalam 2-3 kalimat.
Nama: %s
Gaji: Rp %s
Total Hutang: Rp %s
Gunakan bahasa Indonesia yang sopan dan profesional.`,
		in.Employee.Name,
		formatRupiah(in.Employee.Salary),
		formatRupiah(debt),
	)
}
