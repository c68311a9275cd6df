package bot

// User-facing reply texts. The bot speaks Russian; schedule content itself is
// rendered by the timetable composer and passed through untouched.
const (
	msgWelcome = "Привет! Я показываю расписание занятий УГАТУ.\n\n" +
		"Выберите группу командой /group или преподавателя командой /teacher, " +
		"затем запрашивайте расписание через /day и /week."

	msgHelp = "Команды:\n" +
		"/group <название> — выбрать учебную группу\n" +
		"/teacher <фамилия> — выбрать преподавателя\n" +
		"/semester — сменить семестр\n" +
		"/day [день] — расписание на день\n" +
		"/week — расписание на неделю\n" +
		"/help — эта справка\n\n" +
		"Можно просто написать день недели, «сегодня» или «завтра»."

	msgNoSubject = "Сначала выберите группу (/group) или преподавателя (/teacher)."

	msgNoSchedule = "Расписание пока пустое. Попробуйте позже или смените семестр через /semester."

	msgSubjectGone = "Выбранная группа или преподаватель больше не значится в расписании. " +
		"Выберите заново через /group или /teacher."

	msgUpstreamDown = "Сервер расписания сейчас недоступен. Попробуйте ещё раз через пару минут."

	msgChooseSemester = "Выберите семестр:"
	msgSemesterSet    = "Семестр сохранён. Выбор группы или преподавателя действует в рамках семестра."

	msgGroupUsage   = "Укажите название группы: /group СУЛА-308С"
	msgTeacherUsage = "Укажите фамилию преподавателя: /teacher Иванов"

	msgNothingFound = "Ничего не найдено. Проверьте написание или смените семестр через /semester."
	msgChooseMatch  = "Уточните, что вы имели в виду:"

	msgChooseDay = "Выберите день:"

	msgUnknown = "Не понимаю. Список команд: /help"
)

// subjectSetReply confirms a subject selection.
func subjectSetReply(name string) string {
	return "Готово! Теперь /day и /week показывают расписание для «" + name + "»."
}
