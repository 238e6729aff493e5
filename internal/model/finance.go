package model

// Settings holds per-tenant accounting preferences.
type Settings struct {
	ValuationMethod ValuationMethod `json:"valuationMethod"`
	DefaultCurrency string          `json:"defaultCurrency"`
}

// DefaultSettings returns the settings of a freshly created tenant.
func DefaultSettings() Settings {
	return Settings{ValuationMethod: ValuationFIFO, DefaultCurrency: "AUD"}
}

// FinanceData is the whole financial dataset of one tenant. It is loaded and
// saved as a single document. Journals and ledger rows are kept newest first.
type FinanceData struct {
	Version               int64                     `json:"version"`
	Settings              Settings                  `json:"settings"`
	Periods               []Period                  `json:"periods"`
	Accounts              []Account                 `json:"accounts"`
	Ledger                []LedgerEntry             `json:"ledger"`
	Journals              []JournalEntry            `json:"journals"`
	TaxProfiles           []TaxProfile              `json:"taxProfiles"`
	InventoryItems        []InventoryItem           `json:"inventoryItems"`
	InventoryLots         []InventoryLot            `json:"inventoryLots"`
	InventoryTransactions []InventoryTransaction    `json:"inventoryTransactions"`
	Budgets               []BudgetPlan              `json:"budgets"`
	Cashflows             []CashflowSnapshot        `json:"cashflows"`
	Reports               []FinancialReportSnapshot `json:"reports"`
}

// NewFinanceData returns an initialised, empty dataset.
func NewFinanceData() *FinanceData {
	return &FinanceData{
		Settings:              DefaultSettings(),
		Periods:               []Period{},
		Accounts:              []Account{},
		Ledger:                []LedgerEntry{},
		Journals:              []JournalEntry{},
		TaxProfiles:           []TaxProfile{},
		InventoryItems:        []InventoryItem{},
		InventoryLots:         []InventoryLot{},
		InventoryTransactions: []InventoryTransaction{},
		Budgets:               []BudgetPlan{},
		Cashflows:             []CashflowSnapshot{},
		Reports:               []FinancialReportSnapshot{},
	}
}

// Normalize fills nil collections and zero settings left by older documents.
func (d *FinanceData) Normalize() {
	if d.Settings.ValuationMethod == "" {
		d.Settings.ValuationMethod = ValuationFIFO
	}
	if d.Settings.DefaultCurrency == "" {
		d.Settings.DefaultCurrency = DefaultSettings().DefaultCurrency
	}
	if d.Periods == nil {
		d.Periods = []Period{}
	}
	if d.Accounts == nil {
		d.Accounts = []Account{}
	}
	if d.Ledger == nil {
		d.Ledger = []LedgerEntry{}
	}
	if d.Journals == nil {
		d.Journals = []JournalEntry{}
	}
	if d.TaxProfiles == nil {
		d.TaxProfiles = []TaxProfile{}
	}
	if d.InventoryItems == nil {
		d.InventoryItems = []InventoryItem{}
	}
	if d.InventoryLots == nil {
		d.InventoryLots = []InventoryLot{}
	}
	if d.InventoryTransactions == nil {
		d.InventoryTransactions = []InventoryTransaction{}
	}
	if d.Budgets == nil {
		d.Budgets = []BudgetPlan{}
	}
	if d.Cashflows == nil {
		d.Cashflows = []CashflowSnapshot{}
	}
	if d.Reports == nil {
		d.Reports = []FinancialReportSnapshot{}
	}
}

// FindAccount returns the account with the given code.
func (d *FinanceData) FindAccount(code string) (Account, bool) {
	for _, a := range d.Accounts {
		if a.Code == code {
			return a, true
		}
	}
	return Account{}, false
}

// FindPeriod returns the index of the period with the given id, or -1.
func (d *FinanceData) FindPeriod(id string) int {
	for i, p := range d.Periods {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// FindItem returns the index of the inventory item with the given SKU, or -1.
func (d *FinanceData) FindItem(sku string) int {
	for i, it := range d.InventoryItems {
		if it.SKU == sku {
			return i
		}
	}
	return -1
}
