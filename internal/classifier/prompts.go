package classifier

const tagsTurn = "Here are the html tags. The tags are ordered as they appear on a page " +
	"with a form to fill, so surrounding tags can help you decide: %s"

var summarizeTemplate = Template{
	Pass: PassSummarize,
	System: "You are an expert in HTML semantics and input tag interpretation. " +
		"Analyze each HTML input tag, represented as an object of its attributes " +
		"(id, type, class, aria-*) and surrounding text, and summarize its purpose and type " +
		"so that relevant data can be entered later.\n\n" +
		"Answer with only a JSON array holding one object per tag with these fields:\n" +
		"- key: the key of the tag, copied unchanged.\n" +
		"- general_input_group: one of dropdown, input text, radiobutton, button, textarea, checkbox. " +
		"Tags with aria-haspopup, or a select with options, are dropdowns. " +
		"type=\"text\" or an input without a type is input text unless the context suggests otherwise. " +
		"Use type=\"radio\", type=\"checkbox\", textarea or role=\"button\" to classify the others. " +
		"Prefer dropdown when ambiguous.\n" +
		"- description: a short, accurate statement of what the tag asks for.",
	ItemsFormat: tagsTurn,
}

func relevanceTemplate(contextDoc string) Template {
	return Template{
		Pass: PassRelevance,
		System: "You are an expert extraction algorithm. Only extract relevant information " +
			"from the document. If you do not know the value of a field, use null.\n\n" +
			"Answer with only a JSON array holding one object per tag with these fields:\n" +
			"- key: the key of the tag, copied unchanged.\n" +
			"- is_relevant_or_required: \"yes\" if the field is required, marked aria-required, " +
			"or relevant to the document, otherwise \"no\". For a radio group mark only one option relevant. " +
			"Submit buttons are not relevant.\n" +
			"- text_value: the text to enter, taken only from the document, or null.\n" +
			"- select_option_value: for tags with select_options, the value of the most suitable option, or null.",
		Shared:      []string{"Here is the document you need to check relevancy from: " + contextDoc},
		ItemsFormat: tagsTurn,
	}
}

const pickOneSystem = "Select the specified option from the options which seem suitable " +
	"given the context document. From those options, return ONLY one option as is in one line."

const chooseDirections = "In the list of options, select the value which seems most likely. " +
	"So if \"value\":\"Male\" is most likely, return Male."
