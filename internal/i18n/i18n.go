package i18n

import (
	"golang.org/x/text/language"
)

const (
	English = "en"
	Hindi   = "hi"
)

var matcher = language.NewMatcher([]language.Tag{language.English, language.Hindi})

var messages = map[string]map[string]string{
	"login_success":      {English: "Login successful", Hindi: "लॉगिन सफल"},
	"login_error":        {English: "Invalid credentials", Hindi: "गलत जानकारी"},
	"logged_out":         {English: "Logged out", Hindi: "लॉगआउट हो गया"},
	"session_expired":    {English: "Session expired due to inactivity. Please login again.", Hindi: "निष्क्रियता के कारण सत्र समाप्त हो गया। कृपया फिर से लॉगिन करें।"},
	"access_denied":      {English: "Access denied", Hindi: "पहुँच अस्वीकृत"},
	"weak_password":      {English: "Password must be 8+ chars with upper, lower and a number.", Hindi: "पासवर्ड कम से कम 8 अक्षरों का हो और उसमें बड़ा अक्षर, छोटा अक्षर और एक अंक हो।"},
	"password_mismatch":  {English: "Passwords do not match.", Hindi: "पासवर्ड मेल नहीं खाते।"},
	"missing_fields":     {English: "Please fill all required fields.", Hindi: "कृपया सभी आवश्यक जानकारी भरें।"},
	"invalid_input":      {English: "Invalid input", Hindi: "अमान्य जानकारी"},
	"data_unavailable":   {English: "Data is temporarily unavailable. Please try again.", Hindi: "डेटा अभी उपलब्ध नहीं है। कृपया पुनः प्रयास करें।"},
	"write_failed":       {English: "Could not save. Please try again.", Hindi: "सहेजा नहीं जा सका। कृपया पुनः प्रयास करें।"},
	"reg_success_farmer": {English: "Farmer registered successfully!", Hindi: "किसान सफलतापूर्वक पंजीकृत हो गया!"},
	"reg_success_corp":   {English: "Corporate user registered successfully!", Hindi: "कॉपोरेट उपयोगकर्ता सफलतापूर्वक पंजीकृत हुआ!"},
	"slot_booked":        {English: "Slot booked!", Hindi: "स्लॉट बुक हो गया!"},
	"slot_not_found":     {English: "Slot not found", Hindi: "स्लॉट नहीं मिला"},
	"no_slots":           {English: "No farmer bookings yet.", Hindi: "अभी कोई किसान बुकिंग नहीं है."},
	"payment_updated":    {English: "Payment status updated", Hindi: "भुगतान स्थिति अपडेट हो गई"},
	"payment_failed":     {English: "Slot ID not found", Hindi: "स्लॉट आईडी नहीं मिली"},
	"language_updated":   {English: "Language updated", Hindi: "भाषा बदल दी गई"},
	"ai_tip":             {English: "AI Advice", Hindi: "AI सलाह"},
}

// Supported reports whether lang is one of the message languages.
func Supported(lang string) bool {
	return lang == English || lang == Hindi
}

// T returns the message for key in lang, falling back to English and then to
// the key itself.
func T(lang, key string) string {
	m, ok := messages[key]
	if !ok {
		return key
	}
	if s, ok := m[lang]; ok {
		return s
	}
	return m[English]
}

// Match picks en or hi for an Accept-Language header value.
func Match(acceptLanguage string) string {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return English
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return English
	}
	if idx == 1 {
		return Hindi
	}
	return English
}

// Resolve picks the first supported language among explicit choices and
// falls back to the Accept-Language header.
func Resolve(acceptLanguage string, choices ...string) string {
	for _, c := range choices {
		if Supported(c) {
			return c
		}
	}
	return Match(acceptLanguage)
}
