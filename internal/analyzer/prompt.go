package analyzer

import "fmt"

// Request carries everything the analyzers need to score one candidate
// against one job.
type Request struct {
	CandidateName   string
	ResumeText      string
	JobTitle        string
	JobDescription  string
	JobRequirements string
}

// BuildAnalysisPrompt assembles the structured-JSON instruction prompt
// for the remote agent. The agent was trained on Portuguese recruiting
// material, so the scaffolding stays in Portuguese and the JSON schema
// uses its field names.
func BuildAnalysisPrompt(req Request, resumeTextLimit int) string {
	resumeText := req.ResumeText
	if resumeTextLimit > 0 && len(resumeText) > resumeTextLimit {
		resumeText = resumeText[:resumeTextLimit]
	}

	jobTitle := req.JobTitle
	if jobTitle == "" {
		jobTitle = "Vaga não especificada"
	}
	jobDesc := req.JobDescription
	if jobDesc == "" {
		jobDesc = "Descrição não fornecida"
	}
	jobReqs := req.JobRequirements
	if jobReqs == "" {
		jobReqs = "Requisitos não especificados"
	}
	candidateName := req.CandidateName
	if candidateName == "" {
		candidateName = "Candidato"
	}

	return fmt.Sprintf(`=== ANÁLISE DE CURRÍCULO ===

INFORMAÇÕES DA VAGA:
Título: %s
Descrição: %s
Requisitos: %s

CANDIDATO: %s

CURRÍCULO COMPLETO:
%s

---

INSTRUÇÕES PARA O AGENTE:
Você é um especialista em recrutamento e seleção.

Analise o currículo do candidato considerando as informações da vaga acima e siga EXATAMENTE as orientações abaixo:

1) HARD SKILLS:
- Identifique até 10 habilidades técnicas mencionadas.
- Para cada skill, indique o nível (Básico / Intermediário / Avançado).
- Caso não haja skills explícitas, estime pelo contexto ou experiência declarada.

2) SOFT SKILLS:
- Identifique até 5 competências interpessoais relevantes (como liderança, comunicação, trabalho em equipe, adaptabilidade).
- Caso não haja informações, indique "Não identificado".

3) EXPERIÊNCIA:
- Resuma o nível de experiência profissional em anos.
- Inclua cargos e responsabilidades principais.
- Se houver lacunas ou inconsistências, destaque.

4) SCORE GERAL:
- Calcule score de 0 a 10 considerando fit técnico, experiência, soft skills e match com a vaga.
- Se houver falta de informações, ajuste score para refletir incerteza.

5) PONTOS FORTES:
- Liste 3 a 5 pontos fortes do candidato baseados no currículo.

6) PONTOS DE ATENÇÃO:
- Liste 3 a 5 riscos ou gaps identificados (ex.: experiência insuficiente, skills ausentes, inconsistências).

7) OBSERVAÇÕES E RISCOS:
- Indique riscos críticos ou potenciais problemas de contratação.
- Se não houver riscos, informe "Nenhum risco crítico identificado".

8) SAÍDA:
- Sempre RETORNE APENAS um JSON VÁLIDO com o seguinte formato:

{
  "score": 0-10,
  "hard_skills": [{"nome": "...", "nivel": "Básico/Intermediário/Avançado"}],
  "soft_skills": ["..."],
  "experiencia": {
      "anos": X,
      "cargos": ["..."],
      "lacunas": ["..."]
  },
  "pontos_fortes": ["..."],
  "pontos_atencao": ["..."],
  "observacoes_riscos": ["..."]
}

- NÃO inclua texto fora do JSON.
- Respeite o idioma do currículo (Português ou Inglês).`,
		jobTitle, jobDesc, jobReqs, candidateName, resumeText)
}
