package sheets

import (
	"fmt"

	"github.com/shopspring/decimal"

	"goszakup/internal/core"
)

const (
	SummaryTitle      = "Итоги закупок"
	AnnouncementTitle = "Объявления о закупках"
	RegisterTitle     = "Договоры"

	statusSubtitle = "Статусы договоров: Исполнен, Частично исполнен, Действует"
	economyNote    = "Примечание: Экономия = Плановая сумма - Фактическая сумма (если факт > 0, иначе сумма договора)"
	noPlan         = "-"
)

// RegisterHeader is the column set of the contract register.
var RegisterHeader = []any{
	"№",
	"Номер договора в реестре договоров",
	"Номер закупки",
	"Описание",
	"Вид предмета",
	"Тип договора",
	"Статус",
	"Фактический способ закупки",
	"Финансовый год",
	"Общая плановая сумма договора",
	"Сумма без НДС",
	"Факт. сумма",
	"Наименование поставщика",
	"Дата заключения",
}

func thousands(d decimal.Decimal) int64 {
	return core.Thousands(d)
}

func grouped(d decimal.Decimal) string {
	return core.GroupDigits(core.Thousands(d))
}

func periodSuffix(scope core.Scope) string {
	if scope.Quarter.Active() {
		return fmt.Sprintf(" %d Q%s", scope.FinYear, scope.Quarter)
	}
	return fmt.Sprintf(" %d", scope.FinYear)
}

// SummarySheet lays out the contract report: narrative, the method table,
// the method by subject table, the terminated count and the announcement
// block. Amounts are in thousand tenge.
func SummarySheet(r *core.ContractReport) Sheet {
	var b builder
	scope := r.Scope
	totals := r.Totals

	title := fmt.Sprintf("ИТОГИ ГОСУДАРСТВЕННЫХ ЗАКУПОК ЗА %d ГОД", scope.FinYear)
	if scope.Quarter.Active() {
		title = fmt.Sprintf("ИТОГИ ГОСУДАРСТВЕННЫХ ЗАКУПОК ЗА %s КВАРТАЛ %d ГОДА", scope.Quarter, scope.FinYear)
	}
	b.add(RowTitle, title)
	for _, w := range r.Warnings {
		b.add(RowWarning, "ВНИМАНИЕ: "+w)
	}
	b.blank()
	b.add(RowText, statusSubtitle)
	b.blank()

	b.add(RowBold, fmt.Sprintf(
		"Фактическая сумма по итогам государственных закупок составляет %s тыс. тенге (без НДС). Экономия составила %s тыс. тенге.",
		grouped(totals.Actual), grouped(totals.Economy)))
	b.blank()

	b.add(RowBold, "Вид предмета закупок (по закупкам не превышающие финансовый год):")
	for subject, sum := range r.Aggregates.BySubject.All() {
		b.add(RowText, fmt.Sprintf("%s - %s тыс. тенге", subject, grouped(sum)))
	}
	b.add(RowBold, fmt.Sprintf("ИТОГО - %s тыс. тенге", grouped(totals.Contract)))
	b.blank()

	b.add(RowText, fmt.Sprintf(
		"Согласно видам по закупкам (по закупкам не превышающие финансовый год): заключено %d договоров на общую сумму %s тыс. тенге (статус договоров: исполнен/частично исполнен + действует).",
		totals.Count, grouped(totals.Contract)))
	b.blank()
	b.blank()

	b.add(RowBold, "Закупки по видам не превышающие финансовый год (тыс. тенге)")
	b.blank()
	b.add(RowHeader, "№", "Способ закупок", "Планируемая сумма без НДС", "Фактическая сумма без НДС", "Экономия без НДС")
	i := 0
	for method, m := range r.Aggregates.ByMethod.All() {
		i++
		var plan any = noPlan
		if m.HasPlan {
			plan = thousands(m.Plan)
		}
		b.add(RowData, i, method, plan, thousands(m.Actual), thousands(m.Economy()))
	}
	b.add(RowTotal, "", "ИТОГО:", thousands(totals.Plan), thousands(totals.Actual), thousands(totals.Economy))
	b.blank()
	b.blank()

	b.add(RowHeader, "№", "Способ закупки/вид закупки", "Количество договоров", "Общая сумма договоров без НДС")
	i = 0
	for method, subjects := range r.Aggregates.ByMethodSubject.All() {
		i++
		b.add(RowGroup, i, method, "", "")
		for subject, st := range subjects.All() {
			b.add(RowData, "", subject, st.Count, thousands(st.Sum))
		}
	}
	b.add(RowTotal, "", "ИТОГО", totals.Count, thousands(totals.Contract))
	b.blank()
	b.blank()

	b.add(RowBold, fmt.Sprintf("Количество расторгнутых договоров: %d", r.TerminatedCount))
	b.blank()
	b.add(RowNote, economyNote)

	if len(r.Announcements) > 0 {
		from, to := scope.AnnouncementWindow()
		b.blank()
		b.add(RowBold, fmt.Sprintf("ОБЪЯВЛЕНИЯ О ЗАКУПКАХ за период %s - %s", from, to))
		b.blank()
		announcementTable(&b, r.Announcements, r.AnnouncementSum)
	}

	return Sheet{Title: SummaryTitle + periodSuffix(scope), Rows: b.rows}
}

// AnnouncementSheet lays out the standalone announcement summary.
func AnnouncementSheet(s *core.AnnouncementSummary) Sheet {
	var b builder
	from, to := s.Scope.AnnouncementWindow()

	b.add(RowTitle, "ОБЪЯВЛЕНИЯ О ЗАКУПКАХ")
	for _, w := range s.Warnings {
		b.add(RowWarning, "ВНИМАНИЕ: "+w)
	}
	b.add(RowText, fmt.Sprintf("Период: %s - %s", from, to))
	b.add(RowText, fmt.Sprintf("БИН заказчика: %s", s.Scope.CustomerBIN))
	b.blank()
	announcementTable(&b, s.Methods, s.Total)

	return Sheet{Title: fmt.Sprintf("%s %s %s", AnnouncementTitle, from, to), Rows: b.rows}
}

func announcementTable(b *builder, methods []core.MethodCount, total int) {
	b.add(RowHeader, "№", "Способ закупки", "Количество")
	for i, mc := range methods {
		b.add(RowData, i+1, mc.Method, mc.Count)
	}
	b.add(RowTotal, "", "ИТОГО", total)
}

// RegisterSheet lays out one row per contract. Sums keep two decimals and
// an absent plan amount is left empty.
func RegisterSheet(r *core.ContractRegister) Sheet {
	var b builder
	for _, w := range r.Warnings {
		b.add(RowWarning, "ВНИМАНИЕ: "+w)
	}
	b.add(RowHeader, RegisterHeader...)
	for i, c := range r.Contracts {
		var plan any = ""
		if c.PlanAmount.Valid {
			plan = core.Round2(c.PlanAmount.Value)
		}
		b.add(RowData,
			i+1,
			c.ContractNumber,
			c.AnnouncementNo,
			c.Description,
			c.SubjectTypeLabel,
			c.ContractType,
			c.Status,
			c.MethodLabel,
			c.FinYear,
			plan,
			core.Round2(c.ContractSum),
			core.Round2(c.FaktSum),
			c.SupplierName,
			c.SignDate,
		)
	}
	return Sheet{Title: RegisterTitle + periodSuffix(r.Scope), Rows: b.rows}
}
