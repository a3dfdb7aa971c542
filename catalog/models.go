package catalog

// OurModels is the fallback list of first-party models, used until (or unless)
// the deployment listing replaces it.
func OurModels() []Model {
	return []Model{
		{
			ID:          "okailora/HealthcareGPT-7B",
			Name:        "HealthcareGPT 7B",
			Description: "Our flagship model for healthcare conversations and analysis",
			Downloads:   "1.2M",
			Tags:        []string{"healthcare", "custom", "flagship"},
			License:     "Apache 2.0",
			IsOurs:      true,
		},
		{
			ID:          "okailora/ClinicalBERT-Enhanced",
			Name:        "ClinicalBERT Enhanced",
			Description: "Enhanced BERT model optimized for clinical documentation",
			Downloads:   "850K",
			Tags:        []string{"clinical", "bert", "custom"},
			License:     "MIT",
			IsOurs:      true,
		},
		{
			ID:          "okailora/MedicalQA-T5",
			Name:        "MedicalQA T5",
			Description: "Specialized T5 model for medical question answering",
			Downloads:   "620K",
			Tags:        []string{"medical", "qa", "custom"},
			License:     "Apache 2.0",
			IsOurs:      true,
		},
		{
			ID:          "okailora/DiagnosisAssist-LLM",
			Name:        "DiagnosisAssist LLM",
			Description: "Large language model trained for diagnostic assistance",
			Downloads:   "430K",
			Tags:        []string{"diagnosis", "llm", "custom"},
			License:     "MIT",
			IsOurs:      true,
		},
	}
}

// HuggingFaceModels is the static list of third-party models.
func HuggingFaceModels() []Model {
	return []Model{
		{
			ID:          "microsoft/DialoGPT-medium",
			Name:        "DialoGPT Medium",
			Description: "A conversational AI model for healthcare dialogue",
			Downloads:   "2.1M",
			Tags:        []string{"healthcare", "dialogue", "medical"},
			License:     "MIT",
		},
		{
			ID:          "emilyalsentzer/Bio_ClinicalBERT",
			Name:        "Bio ClinicalBERT",
			Description: "BERT model pre-trained on clinical text",
			Downloads:   "892K",
			Tags:        []string{"medical", "clinical", "bert"},
			License:     "Apache 2.0",
		},
		{
			ID:          "medicalai/ClinicalT5-base",
			Name:        "ClinicalT5 Base",
			Description: "T5 model fine-tuned for medical text generation",
			Downloads:   "456K",
			Tags:        []string{"medical", "generation", "t5"},
			License:     "MIT",
		},
		{
			ID:          "google/flan-t5-base",
			Name:        "FLAN-T5 Base",
			Description: "Instruction-tuned T5 model for various tasks",
			Downloads:   "3.2M",
			Tags:        []string{"instruction", "general", "t5"},
			License:     "Apache 2.0",
		},
		{
			ID:          "microsoft/BiomedNLP-PubMedBERT-base-uncased-abstract",
			Name:        "PubMedBERT",
			Description: "BERT trained on PubMed abstracts for biomedical NLP",
			Downloads:   "1.8M",
			Tags:        []string{"biomedical", "pubmed", "bert"},
			License:     "MIT",
		},
		{
			ID:          "allenai/scibert_scivocab_uncased",
			Name:        "SciBERT",
			Description: "BERT model for scientific text understanding",
			Downloads:   "976K",
			Tags:        []string{"scientific", "bert", "research"},
			License:     "Apache 2.0",
		},
	}
}
