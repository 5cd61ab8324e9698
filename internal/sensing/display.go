package sensing

import "fmt"

const lineHeight = 10

// renderSplash draws the boot screen
func renderSplash(d Display) error {
	d.Clear()
	d.DrawText("Sistema de cor", 5, 10)
	d.DrawText("e Luminosidade", 5, 25)
	d.DrawText("Inicializando...", 5, 40)
	return d.Flush()
}

// renderStatus draws the six status lines of a cycle
func renderStatus(d Display, r *Report) error {
	status := "Sistema OK"
	if r.LowLight {
		status = "ALERTA: Luz Baixa!"
	}

	lines := []string{
		"Cor Detectada:",
		r.Label.DisplayName(),
		fmt.Sprintf("R:%d G:%d B:%d", r.Sample.R, r.Sample.G, r.Sample.B),
		fmt.Sprintf("Sat: %.1f%%", r.Saturation),
		fmt.Sprintf("Lux: %d", r.Lux),
		status,
	}

	d.Clear()
	for i, line := range lines {
		d.DrawText(line, 0, int16(i*lineHeight))
	}
	return d.Flush()
}
