package bot

import (
	"fmt"
	"strings"
	"time"

	"git.home.luguber.info/inful/disciplinebot/internal/plan"
	"git.home.luguber.info/inful/disciplinebot/internal/progress"
)

const (
	textStart            = "🔥 Discipline Bot запущено. Натисни або /help"
	textPlanButton       = "📅 План"
	textHellmodeOn       = "💥 Hellmode активовано. Завтра буде жорстко!"
	textHellmodeOff      = "🧊 Hellmode вимкнено."
	textNoReport         = "❓ Не надіслано звіт"
	textEmptyJournal     = "Немає записів."
	textTimerNotFound    = "❌ Не знайдено старт для цього завдання."
	textAlreadyDone      = "☑️ День вже підтверджено. Наступний план прийде за розкладом."
	textReset            = "🔄 Скинуто до Дня 1. Журнал збережено."
	textReminder         = "🧠 Твоє майбутнє чекає. А ти чекаєш що?"
	textAfternoon        = "⏳ Що ти вже зробив? Прогрес є?"
	textJournalPrompt    = "📘 Звіт за день?"
	textJournalDoneBtn   = "✅ Виконав"
	textJournalFailBtn   = "❌ Не виконав"
	textPlanUsage        = "Використання: /plan 3"
	textHellmodeUsage    = "Використання: /hellmode on або /hellmode off"
	textPersistFailed    = "⚠️ Не вдалося зберегти прогрес. Спробуй ще раз."
	textUnknownCommand   = "🤷 Невідома команда. Дивись /help"
	textUnknownAction    = "🤷 Ця кнопка більше не працює."
	textPenaltyUnconfirm = "⛔️ День не підтверджено до вечора."
)

func renderHelp(r Rules) string {
	var b strings.Builder
	b.WriteString("👋 *Вітаю в Discipline Bot*\n\n")
	b.WriteString("🔥 *Головні команди:*\n")
	b.WriteString("/start – Почати / перезапустити день\n")
	b.WriteString("/status – Статус дня: Strikes, Hellmode, Звіт\n")
	b.WriteString("/done – Підтвердити день\n")
	b.WriteString("/plan 1 – Показати план на день\n")
	b.WriteString("/summary – Підсумок тижня\n\n")
	b.WriteString("🎯 *Цілі:*\n")
	b.WriteString("/goal – Встановити ціль на тиждень\n")
	b.WriteString("/hellmode – Hellmode: збільшена складність (on/off)\n\n")
	b.WriteString("📒 *Журнал:*\n")
	b.WriteString("/journal – Переглянути свої дні\n\n")
	b.WriteString("🧱 *Системні команди:*\n")
	b.WriteString("/begin – Записати початок завдання (/begin gym)\n")
	b.WriteString("/end – Завершити завдання і подивитися час (/end gym)\n")
	b.WriteString("/reset – Скинути все до Дня 1\n\n")
	b.WriteString("❗ *Важливо:*\n")
	fmt.Fprintf(&b, "– Якщо не підтвердиш день до %s — буде STRIKE ❌\n", r.JournalPromptAt)
	fmt.Fprintf(&b, "– %d STRIKE підряд — штраф\n", r.StrikeLimit)
	fmt.Fprintf(&b, "– Бот нагадує ціль щодня о %s\n", r.MiddayReminderAt)
	fmt.Fprintf(&b, "– Hellmode автоматично додає складність після %d днів\n", r.EscalationAfterDay)
	return b.String()
}

func renderStatus(st progress.State, report string, r Rules, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📅 День: %d, Strike: %d/%d\n", st.Day, st.Strikes, r.StrikeLimit)
	fmt.Fprintf(&b, "🔥 Hellmode: %s\n", onOff(st.Hellmode))
	fmt.Fprintf(&b, "✅ Стрік: %d\n", st.Streak)
	if st.Confirmed {
		b.WriteString("🟢 День підтверджено\n")
	}
	if st.WeeklyGoal != "" {
		fmt.Fprintf(&b, "🎯 Ціль: %s\n", st.WeeklyGoal)
	}
	for _, label := range st.TimerLabels() {
		fmt.Fprintf(&b, "⏱ %s: %s\n", label, formatDuration(now.Sub(st.Timers[label])))
	}
	fmt.Fprintf(&b, "📘 Звіт: %s", report)
	return b.String()
}

func renderJournal(entries []progress.Entry) string {
	if len(entries) == 0 {
		return "📊 Журнал:\n" + textEmptyJournal
	}
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, e.Date+": "+e.Outcome)
	}
	return "📊 Журнал:\n" + strings.Join(lines, "\n")
}

func renderPlan(day int, d plan.Day) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📅 День %d:", day)
	for _, line := range d.Lines() {
		b.WriteString("\n🔹 " + line)
	}
	return b.String()
}

func renderPlanMissing(day int) string {
	return fmt.Sprintf("❌ Немає плану для дня %d.", day)
}

func renderDailyTask(day int, tasks []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🌅 День %d:", day)
	for _, t := range tasks {
		b.WriteString("\n✅ " + t)
	}
	return b.String()
}

func renderPlanComplete(lastDay int) string {
	return fmt.Sprintf("🏁 План завершено! Пройдено днів: %d. /reset щоб почати знову.", lastDay)
}

func renderConfirmed(st progress.State) string {
	return fmt.Sprintf("🟢 День %d підтверджено! Далі — День %d. Не зупиняйся.", st.Day-1, st.Day)
}

func renderTimerStarted(label string) string { return "▶️ Почав: " + label }

func renderTimerStopped(label string, d time.Duration) string {
	return fmt.Sprintf("✅ Завершено: %s — %s", label, formatDuration(d))
}

func renderGoal(goal string) string { return "🎯 Ціль на тиждень встановлено: " + goal }

func renderJournalDone(st progress.State, r Rules) string {
	if r.StreakAchievement > 0 && st.Streak == r.StreakAchievement {
		return fmt.Sprintf("🏅 Досягнення: %d днів поспіль!", st.Streak)
	}
	return fmt.Sprintf("✅ Звіт прийнято. Стрік: %d", st.Streak)
}

func renderStrike(prefix string, st progress.State, r Rules) string {
	msg := fmt.Sprintf("%s STRIKE %d/%d", prefix, st.Strikes, r.StrikeLimit)
	if st.Strikes >= r.StrikeLimit {
		msg += "\n" + r.PenaltyText
	}
	return msg
}

func renderSummary(s progress.Summary) string {
	return fmt.Sprintf("📈 Тиждень: %d/%d виконано", s.Done, s.Days)
}

func renderReminder(quote string) string {
	if quote == "" {
		return textReminder
	}
	return textReminder + "\n\n" + quote
}

func onOff(v bool) string {
	if v {
		return "ON"
	}
	return "OFF"
}

// formatDuration rounds to whole seconds: "1h2m3s".
func formatDuration(d time.Duration) string {
	return max(d, 0).Round(time.Second).String()
}
