package library

// Built-in content. A deployment normally ships fuller yaml overlays; this
// subset keeps the engine usable out of the box and anchors the tests.

func defaultPremises() []Premise {
	return []Premise{
		{
			ID:    "D1.1",
			Title: "Power is rarely surrendered; it is redistributed",
			Content: "True power shifts occur through elite consensus, external pressure, or systemic fracture.",
			Keywords: []string{"power", "elections", "transition", "elite", "consensus", "coercion", "legitimacy", "democracy", "autocracy"},
			Contexts: []string{"political_transition", "electoral_analysis", "regime_change"},
			Weight:   0.9,
		},
		{
			ID:    "D1.3",
			Title: "Power is sustained through economic architecture",
			Content: "Control over capital flows, debt, resource distribution, and media ownership underlies political stability more than formal institutions.",
			Keywords: []string{"economic", "capital", "debt", "media", "ownership", "stability", "institutions"},
			Contexts: []string{"economic_power", "media_control", "institutional_analysis"},
			Weight:   0.8,
		},
		{
			ID:    "D2.1",
			Title: "A few powers shape the planetary game",
			Content: "Despite the appearance of multilateralism, geopolitical outcomes are determined by a small number of dominant states or blocs.",
			Keywords: []string{"geopolitical", "powers", "multilateral", "dominant", "states", "blocs", "global", "hierarchy"},
			Contexts: []string{"international_relations", "global_power", "geopolitics"},
			Weight:   0.9,
		},
		{
			ID:    "D2.2",
			Title: "Systemic war is ongoing; kinetic conflict is its loudest symptom",
			Content: "Economic pressure, cyberattacks, and narrative domination are integral tools of modern conflict.",
			Keywords: []string{"war", "conflict", "cyber", "economic", "narrative", "hybrid", "warfare", "systemic"},
			Contexts: []string{"modern_warfare", "hybrid_conflict", "information_warfare"},
			Weight:   0.9,
		},
		{
			ID:    "D3.1",
			Title: "Information is a commodity in peace and a weapon in conflict",
			Content: "In peacetime information flows are monetized; in systemic conflict they are weaponized.",
			Keywords: []string{"information", "media", "control", "weaponized", "monetized", "conflict", "propaganda"},
			Contexts: []string{"media_analysis", "information_warfare", "narrative_control"},
			Weight:   0.9,
		},
		{
			ID:    "D3.3",
			Title: "Perception is power",
			Content: "Legitimacy, victimhood, and moral high ground are operational assets; winning the story often outweighs winning the terrain.",
			Keywords: []string{"perception", "legitimacy", "victimhood", "moral", "narrative", "story", "strategic"},
			Contexts: []string{"narrative_warfare", "perception_management", "soft_power"},
			Weight:   0.9,
		},
		{
			ID:    "D4.1",
			Title: "Cultural self-image distorts memory",
			Content: "Societies idealize their past; collective memory is curated through trauma editing and ritualized storytelling.",
			Keywords: []string{"culture", "memory", "trauma", "history", "collective", "narrative", "identity"},
			Contexts: []string{"historical_memory", "cultural_identity", "collective_trauma"},
			Weight:   0.8,
		},
		{
			ID:    "D5.1",
			Title: "Systems behave through feedback, not intention",
			Content: "Outcomes in complex systems emerge from interactions between variables, delays, and feedback loops.",
			Keywords: []string{"systems", "feedback", "complexity", "nonlinear", "emergence", "loops", "variables"},
			Contexts: []string{"systems_analysis", "complexity_theory", "unintended_consequences"},
			Weight:   0.8,
		},
		{
			ID:    "D6.2",
			Title: "Moral certainty often masks strategic interests",
			Content: "The language of values and rights is frequently used to cloak strategic motives.",
			Keywords: []string{"moral", "certainty", "values", "human", "rights", "strategic", "virtue", "leverage"},
			Contexts: []string{"moral_rhetoric", "strategic_morality"},
			Weight:   0.8,
		},
		{
			ID:    "D7.1",
			Title: "Historical context is essential for understanding motivation",
			Content: "Current decisions reflect accumulated trauma, inherited grievances, and strategic memory.",
			Keywords: []string{"historical", "context", "trauma", "grievances", "memory", "decisions", "motivation"},
			Contexts: []string{"historical_analysis", "long_term_strategy"},
			Weight:   0.8,
		},
		{
			ID:    "D8.1",
			Title: "Economic power precedes and shapes political outcomes",
			Content: "The distribution of capital, land, labor, and credit forms the scaffolding beneath political institutions.",
			Keywords: []string{"economic", "power", "capital", "labor", "credit", "political", "governance", "institutions"},
			Contexts: []string{"political_economy", "economic_influence"},
			Weight:   0.9,
		},
		{
			ID:    "D8.3",
			Title: "Resource dependencies define strategic behavior",
			Content: "Access to energy, rare materials, food, and water determines security posture and foreign policy alignment.",
			Keywords: []string{"resources", "dependencies", "energy", "materials", "food", "water", "security", "foreign"},
			Contexts: []string{"resource_geopolitics", "energy_security"},
			Weight:   0.9,
		},
	}
}

func defaultModules() []Module {
	return []Module{
		{
			ID:      "CL-0",
			Name:    "Input Clarity and Narrative Normalization",
			Purpose: "Reframe the input into an analyzable claim before any level-specific work.",
			CoreQuestions: []string{
				"What exactly is being claimed?",
				"What framing or loaded language does the input carry?",
			},
			AnchorPremises: []string{"D3.3"},
			Keywords:       []string{"claim", "framing", "input", "statement", "normalize"},
			Weight:         1.0,
		},
		{
			ID:      "CL-4",
			Name:    "Interest and Incentive Mapping",
			Purpose: "Identify who gains from the claim being believed.",
			CoreQuestions: []string{
				"Which actors benefit if this framing prevails?",
				"What incentives shape the sources involved?",
			},
			AnchorPremises: []string{"D6.2", "D8.1"},
			Keywords:       []string{"interest", "incentive", "benefit", "gain", "actor", "motive"},
			Weight:         0.8,
		},
		{
			ID:      "FL-1",
			Name:    "Claim Decomposition and Verifiability",
			Purpose: "Split the input into checkable factual assertions.",
			CoreQuestions: []string{
				"Which parts are empirically checkable?",
				"What evidence would confirm or refute each part?",
			},
			AnchorPremises: []string{"D3.1"},
			Keywords:       []string{"evidence", "proof", "fact", "verify", "data", "study", "confirmed", "reported"},
			Weight:         0.9,
		},
		{
			ID:      "FL-3",
			Name:    "Source Reliability Assessment",
			Purpose: "Weigh the provenance and incentive structure of cited sources.",
			CoreQuestions: []string{
				"Who originated the underlying reports?",
				"What is the track record and stake of each source?",
			},
			AnchorPremises: []string{"D3.1", "D3.3"},
			Keywords:       []string{"source", "reliability", "bias", "report", "media", "provenance"},
			Weight:         0.8,
		},
		{
			ID:      "FL-7",
			Name:    "Asymmetry and Capability Check",
			Purpose: "Test factual claims against the real capabilities of the actors involved.",
			CoreQuestions: []string{
				"Do the named actors have the capability implied?",
				"What asymmetries constrain what each side can do?",
			},
			AnchorPremises: []string{"D2.1", "D8.3"},
			Keywords:       []string{"capability", "asymmetry", "military", "leverage", "resources", "infrastructure"},
			Weight:         0.7,
		},
		{
			ID:      "NL-1",
			Name:    "Narrative Structure Extraction",
			Purpose: "Surface the story arc the input assumes: heroes, villains, causality.",
			CoreQuestions: []string{
				"What narrative frame organizes the claim?",
				"What causal chain does the story assert?",
			},
			AnchorPremises: []string{"D3.3", "D4.1"},
			Keywords:       []string{"narrative", "story", "because", "caused", "therefore", "frame"},
			Weight:         0.9,
		},
		{
			ID:      "NL-2",
			Name:    "Competing Narrative Comparison",
			Purpose: "Contrast the dominant framing with plausible rival framings.",
			CoreQuestions: []string{
				"How would an opposing camp narrate the same facts?",
				"Which framing survives the weakest assumptions?",
			},
			AnchorPremises: []string{"D3.1", "D6.2"},
			Keywords:       []string{"competing", "alternative", "framing", "perspective", "rival", "counter"},
			Weight:         0.8,
		},
		{
			ID:      "SL-1",
			Name:    "Power Structure Analysis",
			Purpose: "Locate the claim within the relevant power and governance structures.",
			CoreQuestions: []string{
				"Which power structures does the claim implicate?",
				"How would accepting the claim shift legitimacy?",
			},
			AnchorPremises: []string{"D1.1", "D2.1"},
			Keywords:       []string{"power", "control", "system", "government", "geopolitical", "strategic", "regime"},
			Weight:         0.9,
		},
		{
			ID:      "SL-4",
			Name:    "Strategic Interest Projection",
			Purpose: "Map the strategic interests that constrain each actor's moves.",
			CoreQuestions: []string{
				"What survival logic drives each actor here?",
				"Which interests are dressed as values?",
			},
			AnchorPremises: []string{"D2.1", "D6.2", "D8.3"},
			Keywords:       []string{"strategic", "interests", "alliance", "sanctions", "deterrence", "leverage"},
			Weight:         0.8,
		},
		{
			ID:      "SL-6",
			Name:    "Feedback and Second-Order Effects",
			Purpose: "Trace delayed and second-order consequences through the system.",
			CoreQuestions: []string{
				"What feedback loops does the claimed action trigger?",
				"Which consequences appear only after delay?",
			},
			AnchorPremises: []string{"D5.1", "D7.1"},
			Keywords:       []string{"feedback", "complexity", "stability", "consequences", "delayed", "systemic"},
			Weight:         0.7,
		},
	}
}
