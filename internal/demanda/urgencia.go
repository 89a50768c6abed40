package demanda

import "time"

// Urgencia classifica a distância entre hoje e a data da demanda.
type Urgencia string

const (
	UrgenciaAtrasada Urgencia = "atrasada"
	UrgenciaHoje     Urgencia = "hoje"
	UrgenciaAmanha   Urgencia = "amanha"
	UrgenciaFutura   Urgencia = "futura"
)

// ClassificarUrgencia compara apenas os dias de calendário: horários são
// descartados antes da comparação, no fuso de agora.
func ClassificarUrgencia(data, agora time.Time) Urgencia {
	hoje := truncarDia(agora, agora.Location())
	dia := truncarDia(data, agora.Location())

	switch {
	case dia.Before(hoje):
		return UrgenciaAtrasada
	case dia.Equal(hoje):
		return UrgenciaHoje
	case dia.Equal(hoje.AddDate(0, 0, 1)):
		return UrgenciaAmanha
	default:
		return UrgenciaFutura
	}
}

func truncarDia(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}
