package triage

import "intake-triage/internal/domain"

// messages holds the prompts for one language.
type messages struct {
	topicPrompt      string
	topicInvalid     string
	topicSelected    string // %s topic label
	emergencyPrompt  string
	emergencyInvalid string
	policeNote       string
	courtPrompt      string
	courtInvalid     string
	incomePrompt     string
	incomeInvalid    string
	zipPrompt        string
	zipInvalid       string
	resultsIntro     string // %s level name, %s topic label
	cookCountyNote   string
	noReferrals      string
	completeHint     string
	connectTop       string
	connectFallback  string
	continuePrompt   string
	continueTopic    string
	goodbye          string
	continueInvalid  string
	legalResources   string
	crisis           string
	crisisContinue   string

	topicLabels map[domain.Topic]string
	levelNames  map[domain.Level]string
}

var messagesByLanguage = map[domain.Language]messages{
	domain.LanguageEnglish: {
		topicPrompt:      "Hello! I'm here to help connect you with Illinois legal resources. This chatbot provides legal information only and is not legal advice. What legal issue do you need help with?",
		topicInvalid:     "Please select a valid legal issue.",
		topicSelected:    "You selected %s. Is this an emergency?",
		emergencyPrompt:  "Is this an emergency?",
		emergencyInvalid: "Please answer Yes, No, or I don't know.",
		policeNote:       "If this is an emergency, call the police immediately at 911. After you have contacted the police, I can help you find legal resources for your situation.",
		courtPrompt:      "Do you currently have an open court case related to this issue?",
		courtInvalid:     "Please answer Yes or No.",
		incomePrompt:     "Are you low-income or receiving public benefits (like SNAP, Medicaid, SSI)?",
		incomeInvalid:    "Please answer Yes, No, or Not sure.",
		zipPrompt:        "Please provide your Illinois ZIP code to find resources near you.",
		zipInvalid:       "Please provide a valid 5-digit Illinois ZIP code.",
		resultsIntro:     "Based on your situation, here are %s resources for %s in Illinois:",
		cookCountyNote:   "Since you're in Cook County, I'm including Chicago-specific legal aid organizations.",
		noReferrals:      "I couldn't find a specific referral for your situation. Illinois Legal Aid Online (illinoislegalaid.org) has general information that may help.",
		completeHint:     "Use the buttons to continue, restart, or connect with a resource.",
		connectTop:       "Here's your recommended contact for immediate assistance:",
		connectFallback:  "Please contact one of the organizations listed above for assistance with your legal issue.",
		continuePrompt:   "Would you like help with another legal issue?",
		continueTopic:    "What legal issue would you like help with?",
		goodbye:          "Thank you for using Illinois Legal Triage. If you need help in the future, feel free to return. Take care!",
		continueInvalid:  "Please select Yes or No.",
		legalResources:   "I understand. Let's continue finding legal resources for your situation. What legal issue do you need help with?",
		crisis: "CRISIS DETECTED. If you are in immediate danger, please call 911 now. " +
			"National Domestic Violence Hotline: 1-800-799-7233. Illinois Domestic Violence Hotline: 1-877-863-6338. " +
			"Suicide & Crisis Lifeline: 988. Illinois Child Abuse Hotline (DCFS): 1-800-252-2873. " +
			"National Sexual Assault Hotline (RAINN): 1-800-656-4673.",
		crisisContinue: "Would you like to continue?",
		topicLabels: map[domain.Topic]string{
			domain.TopicChildSupport: "Child Support",
			domain.TopicEducation:    "Education",
			domain.TopicHousing:      "Housing",
			domain.TopicDivorce:      "Divorce",
			domain.TopicCustody:      "Custody",
		},
		levelNames: map[domain.Level]string{
			domain.LevelGeneralInfo:   "general information",
			domain.LevelSelfHelp:      "self-help",
			domain.LevelDirectService: "direct legal assistance",
		},
	},
	domain.LanguageSpanish: {
		topicPrompt:      "¡Hola! Estoy aquí para ayudarle a encontrar recursos legales en Illinois. Este chatbot ofrece solo información legal y no es asesoría legal. ¿Con qué asunto legal necesita ayuda?",
		topicInvalid:     "Seleccione un asunto legal válido.",
		topicSelected:    "Seleccionó %s. ¿Es una emergencia?",
		emergencyPrompt:  "¿Es una emergencia?",
		emergencyInvalid: "Responda Sí, No o No sé.",
		policeNote:       "Si es una emergencia, llame a la policía de inmediato al 911. Después de comunicarse con la policía, puedo ayudarle a encontrar recursos legales.",
		courtPrompt:      "¿Tiene actualmente un caso abierto en la corte relacionado con este asunto?",
		courtInvalid:     "Responda Sí o No.",
		incomePrompt:     "¿Tiene bajos ingresos o recibe beneficios públicos (como SNAP, Medicaid, SSI)?",
		incomeInvalid:    "Responda Sí, No o No estoy seguro.",
		zipPrompt:        "Indique su código postal de Illinois para encontrar recursos cerca de usted.",
		zipInvalid:       "Indique un código postal válido de 5 dígitos.",
		resultsIntro:     "Según su situación, estos son recursos de %s para %s en Illinois:",
		cookCountyNote:   "Como está en el condado de Cook, incluyo organizaciones de ayuda legal de Chicago.",
		noReferrals:      "No encontré una referencia específica para su situación. Illinois Legal Aid Online (illinoislegalaid.org) tiene información general que puede ayudar.",
		completeHint:     "Use los botones para continuar, reiniciar o conectarse con un recurso.",
		connectTop:       "Este es su contacto recomendado para asistencia inmediata:",
		connectFallback:  "Comuníquese con una de las organizaciones indicadas arriba para recibir ayuda.",
		continuePrompt:   "¿Desea ayuda con otro asunto legal?",
		continueTopic:    "¿Con qué asunto legal desea ayuda?",
		goodbye:          "Gracias por usar Illinois Legal Triage. Si necesita ayuda en el futuro, vuelva cuando quiera. ¡Cuídese!",
		continueInvalid:  "Seleccione Sí o No.",
		legalResources:   "Entiendo. Sigamos buscando recursos legales para su situación. ¿Con qué asunto legal necesita ayuda?",
		crisis: "CRISIS DETECTADA. Si está en peligro inmediato, llame al 911 ahora. " +
			"Línea Nacional de Violencia Doméstica: 1-800-799-7233. Línea de Violencia Doméstica de Illinois: 1-877-863-6338. " +
			"Línea de Crisis y Suicidio: 988. Línea de Abuso Infantil de Illinois (DCFS): 1-800-252-2873. " +
			"Línea Nacional de Agresión Sexual (RAINN): 1-800-656-4673.",
		crisisContinue: "¿Desea continuar?",
		topicLabels: map[domain.Topic]string{
			domain.TopicChildSupport: "Manutención infantil",
			domain.TopicEducation:    "Educación",
			domain.TopicHousing:      "Vivienda",
			domain.TopicDivorce:      "Divorcio",
			domain.TopicCustody:      "Custodia",
		},
		levelNames: map[domain.Level]string{
			domain.LevelGeneralInfo:   "información general",
			domain.LevelSelfHelp:      "autoayuda",
			domain.LevelDirectService: "asistencia legal directa",
		},
	},
}

func messagesFor(lang domain.Language) messages {
	if m, ok := messagesByLanguage[lang]; ok {
		return m
	}
	return messagesByLanguage[domain.LanguageEnglish]
}

// CrisisNotice returns the emergency hotline text for lang.
func CrisisNotice(lang domain.Language) string {
	return messagesFor(lang).crisis
}
