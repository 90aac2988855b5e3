package telegram

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// timestampLayout renders times the way es-AR users read them, e.g. "5/3/2026, 14:07:09"
const timestampLayout = "2/1/2006, 15:04:05"

var markdownEscaper = strings.NewReplacer(
	"_", "\\_",
	"*", "\\*",
	"`", "\\`",
	"[", "\\[",
)

// FormatAvailable formats the broadcast message sent when the page becomes reachable
func FormatAvailable(targetURL string, detectedAt time.Time) string {
	var msg strings.Builder

	msg.WriteString("🎉 *¡TURNOS DISPONIBLES!*\n\n")
	msg.WriteString("La página de Validez Nacional de Títulos está accesible.\n\n")
	msg.WriteString(fmt.Sprintf("🔗 [Acceder ahora](%s)\n\n", targetURL))
	msg.WriteString(fmt.Sprintf("⏰ Detectado: %s", FormatTimestamp(detectedAt)))

	return msg.String()
}

// FormatMonitorStarted formats the private message sent when the first check finds no access
func FormatMonitorStarted(interval time.Duration) string {
	var msg strings.Builder

	msg.WriteString("🤖 *Monitor iniciado*\n\n")
	msg.WriteString(fmt.Sprintf("Monitoreando turnos cada %s minuto(s).\n", formatMinutes(interval)))
	msg.WriteString("Actualmente NO hay turnos disponibles.\n\n")
	msg.WriteString("Te avisaré cuando estén disponibles! 🔔")

	return msg.String()
}

// FormatUnavailable formats the broadcast message sent when the page stops being reachable
func FormatUnavailable(detectedAt time.Time) string {
	var msg strings.Builder

	msg.WriteString("😔 *Turnos ya no disponibles*\n\n")
	msg.WriteString("Los turnos que estaban disponibles se agotaron.\n\n")
	msg.WriteString(fmt.Sprintf("⏰ Detectado: %s\n\n", FormatTimestamp(detectedAt)))
	msg.WriteString("Seguiré monitoreando y te avisaré cuando vuelvan a estar disponibles! 🔔")

	return msg.String()
}

// FormatErrorAlert formats the operator alert sent after a run of failed checks
func FormatErrorAlert(consecutive int, err error) string {
	var msg strings.Builder

	msg.WriteString("⚠️ *Error en el monitor*\n\n")
	msg.WriteString(fmt.Sprintf("Se han detectado %d errores consecutivos.\n", consecutive))
	if err != nil {
		msg.WriteString(fmt.Sprintf("Error: %s\n", EscapeMarkdown(err.Error())))
	}
	msg.WriteString("\nEl monitor seguirá intentando...")

	return msg.String()
}

// FormatStopped formats the shutdown message
func FormatStopped(totalChecks int) string {
	var msg strings.Builder

	msg.WriteString("🛑 *Monitor detenido*\n\n")
	msg.WriteString("El monitor de turnos se ha detenido.\n")
	msg.WriteString(fmt.Sprintf("Total de verificaciones: %d", totalChecks))

	return msg.String()
}

// FormatTimestamp renders a detection time for message bodies
func FormatTimestamp(t time.Time) string {
	return t.Format(timestampLayout)
}

// EscapeMarkdown escapes the characters that legacy Markdown treats as entity delimiters.
// Free text such as error messages must go through it or Telegram rejects the message.
func EscapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}

// formatMinutes prints whole minutes without decimals and fractional ones with as few as needed
func formatMinutes(d time.Duration) string {
	if d%time.Minute == 0 {
		return strconv.FormatInt(int64(d/time.Minute), 10)
	}
	return strconv.FormatFloat(d.Minutes(), 'f', -1, 64)
}
