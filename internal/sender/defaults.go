package sender

// DefaultRules returns the built-in allow-list of Indian bank and payment senders.
func DefaultRules() []Rule {
	return []Rule{
		{Pattern: "HDFCBK", Bank: "HDFC Bank"},
		{Pattern: "HDFCBN", Bank: "HDFC Bank"},
		{Pattern: "ICICIB", Bank: "ICICI Bank"},
		{Pattern: "ICICIT", Bank: "ICICI Bank"},
		{Pattern: "SBIINB", Bank: "State Bank of India"},
		{Pattern: "SBIPSG", Bank: "State Bank of India"},
		{Pattern: "SBMSMS", Bank: "State Bank of India"},
		{Pattern: "ATMSBI", Bank: "State Bank of India"},
		{Pattern: "AXISBK", Bank: "Axis Bank"},
		{Pattern: "KOTAKB", Bank: "Kotak Mahindra Bank"},
		{Pattern: "PNBSMS", Bank: "Punjab National Bank"},
		{Pattern: "BOIIND", Bank: "Bank of India"},
		{Pattern: "BOBTXN", Bank: "Bank of Baroda"},
		{Pattern: "CANBNK", Bank: "Canara Bank"},
		{Pattern: "UNIONB", Bank: "Union Bank of India"},
		{Pattern: "IDFCFB", Bank: "IDFC First Bank"},
		{Pattern: "INDUSB", Bank: "IndusInd Bank"},
		{Pattern: "YESBNK", Bank: "Yes Bank"},
		{Pattern: "FEDBNK", Bank: "Federal Bank"},
		{Pattern: "RBLBNK", Bank: "RBL Bank"},
		{Pattern: "AUBANK", Bank: "AU Small Finance Bank"},
		{Pattern: "IPBMSG", Bank: "India Post Payments Bank"},
		{Pattern: "AIRBNK", Bank: "Airtel Payments Bank"},
		{Pattern: "JIOPBS", Bank: "Jio Payments Bank"},
		{Pattern: "PAYTMB", Bank: "Paytm Payments Bank"},
		{Pattern: "PAYTM", Bank: "Paytm", BodyKeywords: []string{"debited", "credited", "paid", "received", "sent"}},
		{Pattern: "PHONPE", Bank: "PhonePe", BodyKeywords: []string{"debited", "credited", "paid", "received", "sent"}},
		{Pattern: "GPAY", Bank: "Google Pay", BodyKeywords: []string{"debited", "credited", "paid", "received", "sent"}},
		{Pattern: "AMZNPY", Bank: "Amazon Pay", BodyKeywords: []string{"debited", "credited", "paid", "received"}},
	}
}
