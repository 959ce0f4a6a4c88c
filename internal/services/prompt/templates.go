package prompt

// Locale selects a template set and the matching user-facing messages
type Locale string

const (
	LocaleEnglish Locale = "en"
	LocaleArabic  Locale = "ar"
)

// ParseLocale falls back to English for anything it does not recognise
func ParseLocale(s string) Locale {
	switch Locale(s) {
	case LocaleArabic:
		return LocaleArabic
	default:
		return LocaleEnglish
	}
}

type templateSet struct {
	attachmentLeadIn string

	summarize string
	// analyze takes the serialized catalog and then the user text
	analyze string
	refine  string
	generic string

	catalogID          string
	catalogTitle       string
	catalogDescription string
	catalogDetails     string
}

// Messages are the user-facing strings surfaced through notifications and state
type Messages struct {
	InputMissing      string
	FileSelected      string
	NoFileSelected    string
	Success           string
	EmptyResponse     string
	EncodingFailed    string
	AuthReselect      string
	AuthFailed        string
	ServiceError      string
	UnknownError      string
	CredentialMissing string
	FileTooLarge      string
	UnsupportedType   string
	Busy              string
}

var templates = map[Locale]templateSet{
	LocaleEnglish: {
		attachmentLeadIn: "The content provided in the attached file/image is: ",
		summarize: `
You are an expert document analysis assistant.
Summarize the following content accurately and clearly as key points, focusing on the most important information:
"""
%s
"""
`,
		analyze: `
You are an expert service matching assistant.
Based on the following service descriptions:
"""
%s
"""
and the following content/request:
"""
%s
"""
Identify the most relevant services from our list (state the service ID and title) and give a brief explanation of why each one fits.
`,
		refine: `
You are an expert in improving formal and business writing.
Correct and refine the following text so that it is clearer, more professional and free of grammatical and spelling mistakes, while preserving the original meaning.
"""
%s
"""
`,
		generic: `
You are a general assistant.
Respond to the following query:
"""
%s
"""
`,
		catalogID:          "ID",
		catalogTitle:       "Service",
		catalogDescription: "Description",
		catalogDetails:     "Details",
	},
	LocaleArabic: {
		attachmentLeadIn: "المحتوى المقدم في الصورة/الملف هو: ",
		summarize: `
أنت مساعد خبير في تحليل المستندات.
لخص المحتوى التالي بدقة ووضوح في نقاط رئيسية، مع التركيز على أهم المعلومات:
"""
%s
"""
`,
		analyze: `
أنت مساعد خبير في مطابقة الخدمات.
استنادًا إلى وصف الخدمات التالي:
"""
%s
"""
والمحتوى/الطلب التالي:
"""
%s
"""
حدد الخدمات الأكثر صلة من قائمتنا (اذكر ID الخدمة وعنوانها) وقدم شرحًا موجزًا لماذا هي مناسبة.
`,
		refine: `
أنت خبير في تحسين النصوص باللغة العربية، وخصوصًا النصوص الرسمية والتجارية في سياق المملكة العربية السعودية.
قم بتحسين وتدقيق النص التالي ليكون أكثر وضوحًا، احترافية، وخاليًا من الأخطاء اللغوية والإملائية، مع الحفاظ على المعنى الأصلي.
"""
%s
"""
`,
		generic: `
أنت مساعد عام.
قم بالرد على الاستعلام التالي:
"""
%s
"""
`,
		catalogID:          "ID",
		catalogTitle:       "الخدمة",
		catalogDescription: "الوصف",
		catalogDetails:     "التفاصيل",
	},
}

var messages = map[Locale]Messages{
	LocaleEnglish: {
		InputMissing:      "Please enter some text or upload a file to get started.",
		FileSelected:      "File selected: %s",
		NoFileSelected:    "No file selected.",
		Success:           "Your request was processed successfully!",
		EmptyResponse:     "No response was received from the generation service.",
		EncodingFailed:    "An error occurred while processing the file.",
		AuthReselect:      "An authentication error occurred. Please select your API key again.",
		AuthFailed:        "An authentication error occurred. Please check the configured API key.",
		ServiceError:      "An error occurred while contacting the generation service: %s. Please try again.",
		UnknownError:      "unknown error",
		CredentialMissing: "Please select your API key to continue.",
		FileTooLarge:      "The file exceeds the maximum size of %d MB.",
		UnsupportedType:   "This file type is not supported.",
		Busy:              "A request is already being processed. Please wait.",
	},
	LocaleArabic: {
		InputMissing:      "الرجاء إدخال نص أو رفع ملف للبدء.",
		FileSelected:      "تم تحديد الملف: %s",
		NoFileSelected:    "لم يتم تحديد أي ملف.",
		Success:           "تمت معالجة طلبك بنجاح!",
		EmptyResponse:     "لم يتم تلقي استجابة من Gemini.",
		EncodingFailed:    "حدث خطأ في معالجة الملف.",
		AuthReselect:      "حدث خطأ في المصادقة. يرجى اختيار مفتاح API الخاص بك مرة أخرى.",
		AuthFailed:        "حدث خطأ في المصادقة. يرجى التحقق من مفتاح API.",
		ServiceError:      "حدث خطأ أثناء الاتصال بخدمة Gemini: %s. يرجى المحاولة مرة أخرى.",
		UnknownError:      "خطأ غير معروف",
		CredentialMissing: "الرجاء تحديد مفتاح API الخاص بك للمتابعة.",
		FileTooLarge:      "حجم الملف يتجاوز الحد الأقصى البالغ %d ميجابايت.",
		UnsupportedType:   "نوع الملف غير مدعوم.",
		Busy:              "يتم معالجة طلب آخر حاليًا، يرجى الانتظار.",
	},
}

// MessagesFor returns the message set for locale
func MessagesFor(locale Locale) Messages {
	if m, ok := messages[locale]; ok {
		return m
	}
	return messages[LocaleEnglish]
}
