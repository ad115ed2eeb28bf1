package classify

import (
	"fmt"
	"strings"
)

// classificationPrompt embeds the fixed closed list of document
// categories. The excerpt placeholder receives the head of the
// document text.
const classificationPrompt = `
จำแนกเอกสารนี้เป็นหนึ่งในประเภท:

1. ข้อมูลที่เกี่ยวข้องกับการประกอบธุรกิจ บัตรเครดิต
2. ทะเบียนผู้ถือหุ้นของบริษัทฉบับล่าสุด
3. เอกสารแสดงฐานะทางการเงิน
4. มติคณะกรรมการบริษัท / เอกสารอนุมัติ
5. โครงสร้างองค์กร
6. โครงสร้างกลุ่มธุรกิจ
7. นโยบายและคู่มือปฏิบัติงาน

ตอบเฉพาะหมายเลข + ชื่อประเภท เช่น "3. เอกสารแสดงฐานะทางการเงิน"

เนื้อหา:
%s
`

// Prompt builds the classification prompt from the first excerptChars
// characters of the document text. The excerpt boundary counts runes,
// not bytes, so Thai text is never cut mid-character.
func Prompt(text string, excerptChars int) string {
	if excerptChars > 0 {
		runes := []rune(text)
		if len(runes) > excerptChars {
			text = string(runes[:excerptChars])
		}
	}
	return fmt.Sprintf(strings.TrimLeft(classificationPrompt, "\n"), text)
}
