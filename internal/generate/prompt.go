// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package generate

import (
	"bytes"
	"text/template"
)

// systemPrompt pins the model to structured JSON output.
const systemPrompt = "Eres un asistente que genera JSON estructurado."

// minReferences is the minimum number of bibliography entries requested.
const minReferences = 5

// researchPromptTmpl asks for a technical research document as a JSON object
// with exactly two string fields, latex_body and bibtex_entries.
var researchPromptTmpl = template.Must(template.New("research").Parse(`Actúa como un investigador experto de la ESCOM (IPN). Genera una investigación técnica para la materia "{{.Subject}}".
Tema: "{{.Topic}}"

Tu respuesta DEBE ser un objeto JSON válido con exactamente dos claves:
1. "latex_body": el cuerpo del documento en LaTeX.
   - No incluyas preámbulo ni \begin{document}. Empieza directamente con \section{...}.
   - Cita con \cite{clave}. Usa las claves ref1, ref2, ref3, etc.
   - Incluye tablas, ecuaciones y secciones técnicas a profundidad.
   - Escapa los caracteres especiales en texto: '%' como '\%', '&' como '\&', '_' como '\_'.
   - No uses Markdown (ni **negritas** ni # títulos). Solo LaTeX.
2. "bibtex_entries": las entradas BibTeX de las citas usadas.
   - Genera como MÍNIMO {{.MinReferences}} referencias académicas reales o realistas (artículos, libros, tesis).
   - Las claves deben coincidir exactamente con las usadas en latex_body.

Formato de respuesta (solo JSON):
{
  "latex_body": "\\section{Introducción} ...",
  "bibtex_entries": "@article{ref1, ...}\n@book{ref2, ...}"
}
`))

// renderPrompt executes the research prompt template for one topic.
func renderPrompt(subject, topic string) (string, error) {
	var buf bytes.Buffer
	data := struct {
		Subject       string
		Topic         string
		MinReferences int
	}{subject, topic, minReferences}
	if err := researchPromptTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
