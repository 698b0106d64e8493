// Package columns maps a ledger header row, in whatever order and spelling
// the source uses, onto a fixed set of canonical fields.
package columns

// Field is a canonical ledger column.
type Field int

const (
	SrcFile Field = iota
	RoomNo
	GroupCompany
	Organization
	House
	Address
	Ls
	LsCode
	FullName
	DebtStart
	Accrued
	Paid
	DebtEnd
	DebtStructure
	MonthsInDebt
	DebtCategory
	MgmtStatus
	District
	ObjectName
	Division
	DivisionHead
	PremisesType
	LsStatus
	LsCloseDate
	LsType
	AccrualCenter
	Period
	AddressNo

	numFields
)

// labels lists the accepted header spellings per field; the first is canonical.
var labels = [numFields][]string{
	SrcFile:       {"Файл"},
	RoomNo:        {"№скв", "№ скв"},
	GroupCompany:  {"ГК"},
	Organization:  {"Организация"},
	House:         {"Дом"},
	Address:       {"Адрес"},
	Ls:            {"ЛС", "Лицевой счёт"},
	LsCode:        {"Код ЛС"},
	FullName:      {"ФИО"},
	DebtStart:     {"Задолженность на начало"},
	Accrued:       {"Начислено"},
	Paid:          {"Оплачено"},
	DebtEnd:       {"Задолженность на конец"},
	DebtStructure: {"Структура долга"},
	MonthsInDebt:  {"Месяцы задолженности"},
	DebtCategory:  {"Категория долга"},
	MgmtStatus:    {"Статус управления домом"},
	District:      {"Район"},
	ObjectName:    {"Объект"},
	Division:      {"Дивизионы", "Дивизион"},
	DivisionHead:  {"Руководитель дивизиона"},
	PremisesType:  {"Тип помещения"},
	LsStatus:      {"Статус ЛС"},
	LsCloseDate:   {"Дата закрытия ЛС"},
	LsType:        {"Тип ЛС"},
	AccrualCenter: {"Центр начислений"},
	Period:        {"Период"},
	AddressNo:     {"АдрН"},
}

// Mandatory fields identify a header row.
var Mandatory = []Field{Ls, Address, Period, DebtEnd}

// Fields returns every canonical field in declaration order.
func Fields() []Field {
	out := make([]Field, numFields)
	for i := range out {
		out[i] = Field(i)
	}
	return out
}

// Label returns the canonical header text of f.
func (f Field) Label() string {
	if f < 0 || f >= numFields {
		return ""
	}
	return labels[f][0]
}

func (f Field) String() string {
	return f.Label()
}

// Synonyms returns every accepted spelling of f.
func (f Field) Synonyms() []string {
	if f < 0 || f >= numFields {
		return nil
	}
	return labels[f]
}

// Record holds one data row's raw cell text by canonical field. Fields absent
// from the header are empty.
type Record struct {
	SrcFile       string
	RoomNo        string
	GroupCompany  string
	Organization  string
	House         string
	Address       string
	Ls            string
	LsCode        string
	FullName      string
	DebtStart     string
	Accrued       string
	Paid          string
	DebtEnd       string
	DebtStructure string
	MonthsInDebt  string
	DebtCategory  string
	MgmtStatus    string
	District      string
	ObjectName    string
	Division      string
	DivisionHead  string
	PremisesType  string
	LsStatus      string
	LsCloseDate   string
	LsType        string
	AccrualCenter string
	Period        string
	AddressNo     string
}

// Get returns the cell text of f.
func (r *Record) Get(f Field) string {
	if p := r.slot(f); p != nil {
		return *p
	}
	return ""
}

// Set stores the cell text of f.
func (r *Record) Set(f Field, v string) {
	if p := r.slot(f); p != nil {
		*p = v
	}
}

func (r *Record) slot(f Field) *string {
	switch f {
	case SrcFile:
		return &r.SrcFile
	case RoomNo:
		return &r.RoomNo
	case GroupCompany:
		return &r.GroupCompany
	case Organization:
		return &r.Organization
	case House:
		return &r.House
	case Address:
		return &r.Address
	case Ls:
		return &r.Ls
	case LsCode:
		return &r.LsCode
	case FullName:
		return &r.FullName
	case DebtStart:
		return &r.DebtStart
	case Accrued:
		return &r.Accrued
	case Paid:
		return &r.Paid
	case DebtEnd:
		return &r.DebtEnd
	case DebtStructure:
		return &r.DebtStructure
	case MonthsInDebt:
		return &r.MonthsInDebt
	case DebtCategory:
		return &r.DebtCategory
	case MgmtStatus:
		return &r.MgmtStatus
	case District:
		return &r.District
	case ObjectName:
		return &r.ObjectName
	case Division:
		return &r.Division
	case DivisionHead:
		return &r.DivisionHead
	case PremisesType:
		return &r.PremisesType
	case LsStatus:
		return &r.LsStatus
	case LsCloseDate:
		return &r.LsCloseDate
	case LsType:
		return &r.LsType
	case AccrualCenter:
		return &r.AccrualCenter
	case Period:
		return &r.Period
	case AddressNo:
		return &r.AddressNo
	}
	return nil
}
