package conversation

// Button labels. Inbound text is matched against these exactly.
const (
	btnAddExpense  = "Добавить расход"
	btnAddIncome   = "Добавить доход"
	btnBalance     = "Показать баланс"
	btnStats       = "Статистика"
	btnRates       = "Курс валют"
	btnExportCSV   = "Экспорт в CSV"
	btnExportXLSX  = "Экспорт в XLSX"
	btnDiagrams    = "Диаграммы"
	btnSettings    = "Настройки"
	btnStatsDay    = "За день"
	btnStatsWeek   = "За неделю"
	btnStatsMonth  = "За месяц"
	btnStatsByCat  = "По категориям"
	btnCurrency    = "Выбрать валюту"
	btnCategories  = "Управление категориями"
	btnBudget      = "Установить бюджет"
	btnAddCategory = "Добавить категорию"
	btnDelCategory = "Удалить категорию"
	btnKindExpense = "Расход"
	btnKindIncome  = "Доход"
	btnYes         = "Да"
	btnNo          = "Нет"
	btnCancel      = "Отмена"
	btnBack        = "Назад"
	cmdStart       = "/start"
	cmdCancel      = "/cancel"
)

var (
	mainMenu = [][]string{
		{btnAddExpense, btnAddIncome},
		{btnBalance, btnStats},
		{btnRates},
		{btnExportCSV, btnExportXLSX},
		{btnDiagrams, btnSettings},
	}
	statsMenu = [][]string{
		{btnStatsDay, btnStatsWeek, btnStatsMonth},
		{btnStatsByCat},
		{btnBack},
	}
	settingsMenu = [][]string{
		{btnCurrency, btnCategories},
		{btnBudget},
		{btnBack},
	}
	currencyMenu = [][]string{
		{"RUB", "USD", "EUR"},
		{btnBack},
	}
	categoryMenu = [][]string{
		{btnAddCategory, btnDelCategory},
		{btnBack},
	}
	kindMenu = [][]string{
		{btnKindExpense},
		{btnKindIncome},
		{btnCancel},
	}
	confirmMenu = [][]string{
		{btnYes, btnNo},
	}
)

// Reply texts.
const (
	msgWelcome        = "👋 Привет! Я — твой финансовый помощник. Выбери действие:"
	msgUnknown        = "🤔 Не понимаю. Выберите действие в меню."
	msgCancelled      = "❌ Отменено."
	msgOpCancelled    = "❌ Операция отменена."
	msgFailure        = "⚠️ Что-то пошло не так. Попробуйте ещё раз."
	msgEnterExpense   = "💸 Введите сумму расхода:"
	msgEnterIncome    = "💰 Введите сумму дохода:"
	msgNotNumber      = "⚠️ Введите число."
	msgNotPositive    = "⚠️ Сумма должна быть больше нуля."
	msgTooLarge       = "⚠️ Слишком большая сумма."
	msgChooseCategory = "🗂 Выберите категорию:"
	msgCatNotFound    = "⚠️ Категория не найдена."
	msgCatExists      = "⚠️ Такая категория уже существует."
	msgChoosePeriod   = "📈 Выберите период:"
	msgSettings       = "⚙️ Настройки:"
	msgChooseCurrency = "🌐 Выберите валюту:"
	msgBadCurrency    = "⚠️ Неизвестный код валюты. Введите код ISO 4217, например USD."
	msgCategoryMenu   = "🗂 Меню категорий:"
	msgEnterCatName   = "➕ Введите название категории:"
	msgEmptyCatName   = "⚠️ Название не может быть пустым."
	msgCatNameTooLong = "⚠️ Слишком длинное название."
	msgChooseKind     = "📑 Выберите тип категории:"
	msgBadKind        = "⚠️ Выберите «Расход» или «Доход»."
	msgBudgetCategory = "💰 Выберите категорию:"
	msgNoExpenseCats  = "⚠️ Нет категорий расходов."
	msgDeleteCategory = "🗑 Выберите категорию для удаления:"
	msgNoCategories   = "⚠️ Нет категорий."
	msgRatesFailed    = "⚠️ Не удалось получить курсы."
	msgChartFailed    = "⚠️ Не удалось построить диаграмму."
	capTodayByCat     = "📊 По категориям сегодня"
	capWeekTrend      = "📈 Баланс за 7 дней"
	capMonthByCat     = "📊 По категориям за месяц"
	capDiagramByCat   = "📊 Расходы по категориям за месяц"
	capDiagramTrend   = "📈 Динамика баланса за месяц"
)

// categoryKeyboard lists one category per row followed by a cancel row.
func categoryKeyboard(names []string) [][]string {
	rows := make([][]string, 0, len(names)+1)
	for _, n := range names {
		rows = append(rows, []string{n})
	}
	return append(rows, []string{btnCancel})
}
