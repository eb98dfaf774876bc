package classify

// DefaultRules returns the keyword heuristics used when neither learned
// phrases nor the catalog identify an item. Order matters: the first rule
// with a matching keyword wins.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name:     "Botox",
			Category: "Botox",
			Keywords: []string{"botox", "โบ", "ริ้วรอย", "กราม"},
		},
		{
			Name:     "Filler",
			Category: "Filler",
			Keywords: []string{"filler", "ฟิล", "เติม", "ขมับ", "ร่องแก้ม"},
		},
		{
			Name:     "Hifu",
			Category: "Hifu",
			Keywords: []string{"hifu", "ยกกระชับ", "ultra", "ไฮฟุ"},
		},
		{
			Name:     "Meso",
			Category: "Meso",
			Keywords: []string{"meso", "เมโส", "fat", "แฟต", "made", "chanel", "face", "หน้าใส", "ฝ้า"},
		},
		{
			Name:     "PRP",
			Category: "PRP",
			Keywords: []string{"prp", "เลือด"},
		},
		{
			Name:     "Hair Removal",
			Category: "Hair",
			Keywords: []string{"hair", "laser", "diode", "ipl", "yag", "ขน", "กำจัดขน"},
		},
		{
			Name:     "Treatment",
			Category: "Treatment",
			Keywords: []string{"treatment", "สิว", "pico", "acne", "ทรีท", "กดสิว", "mounjaro"},
		},
		{
			Name:     "Oligio",
			Category: "Treatment",
			Keywords: []string{"olagio", "oligio"},
		},
		{
			Name:     "Vitamin",
			Category: "Vitamin",
			Keywords: []string{"vitamin", "วิตามิน", "drip", "ผิว", "ดริป"},
		},
		// "pro" also catches "promo" and "program"
		{
			Name:     "Promotion",
			Category: "Promo",
			Keywords: []string{"promo", "pro", "โปร", "set", "จับคู่", "แถม"},
		},
		{
			Name:     "Surgery",
			Category: "Surgery",
			Keywords: []string{"surgery", "ศัลย", "จมูก", "คาง", "ตาสองชั้น", "ดูดไขมัน"},
		},
		{
			Name:     "Consultation",
			Category: "Treatment",
			Keywords: []string{"ปรึกษา"},
		},
	}
}
